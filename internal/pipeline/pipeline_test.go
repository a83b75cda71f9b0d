package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/analytics"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/planner"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func acme() campaign.Input {
	return campaign.Input{
		BrandName:      "Acme",
		Category:       "Technology",
		ProductDetails: "A smart home hub",
		Location:       "Berlin",
		TargetScope:    "Product Launch",
		Budget:         "$10,000 - $25,000",
	}
}

type stubExecutor struct {
	got []qloo.Descriptor
}

func (s *stubExecutor) Execute(_ context.Context, ds []qloo.Descriptor) []qloo.Result {
	s.got = ds
	out := make([]qloo.Result, len(ds))
	for i, d := range ds {
		out[i] = qloo.Result{Query: d, Success: i%2 == 0}
		if out[i].Success {
			out[i].Data = json.RawMessage(`{"results":{"entities":[{"name":"Cafe","entity_id":"e1","popularity":0.9}]}}`)
		} else {
			out[i].Error = "HTTP 500"
		}
	}
	return out
}

type memArchive struct {
	mu      sync.Mutex
	reports map[string]any
	err     error
}

func (m *memArchive) Put(_ context.Context, id string, report any) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reports == nil {
		m.reports = map[string]any{}
	}
	m.reports[id] = report
	return "reports/" + id + ".json.zst", nil
}

func newPipeline(ex Executor, opts ...Option) *Pipeline {
	p := New(planner.New(nil), ex, analysis.New(nil), analytics.New(nil), opts...)
	p.newID = func() string { return "run-1" }
	p.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return p
}

func TestRun_AllStages(t *testing.T) {
	ex := &stubExecutor{}
	arch := &memArchive{}
	p := newPipeline(ex, WithArchive(arch))

	r, err := p.Run(context.Background(), acme())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.ID != "run-1" {
		t.Errorf("ID = %q, want run-1", r.ID)
	}
	if !r.Plan.Fallback() {
		t.Errorf("plan source = %q, want fallback without a model", r.Plan.Source)
	}
	if diff := cmp.Diff(r.Plan.Descriptors, ex.got); diff != "" {
		t.Errorf("executed descriptors differ from plan (-plan +executed):\n%s", diff)
	}
	if len(r.Results) != len(r.Plan.Descriptors) {
		t.Errorf("results = %d, want one per descriptor (%d)", len(r.Results), len(r.Plan.Descriptors))
	}
	if want := (len(r.Results) + 1) / 2; r.Successes() != want {
		t.Errorf("Successes() = %d, want %d", r.Successes(), want)
	}
	if !r.Analysis.Fallback() {
		t.Errorf("analysis kind = %q, want fallback", r.Analysis.Kind)
	}
	for _, f := range r.Analytics.Facets() {
		if !f.Fallback() {
			t.Errorf("facet %s source = %q, want fallback", f.Name, f.Source)
		}
	}
	if r.Charts.BrandLikingPool == nil {
		t.Error("brand liking pool chart missing despite successful results")
	}
	if r.ArchiveKey != "reports/run-1.json.zst" {
		t.Errorf("ArchiveKey = %q", r.ArchiveKey)
	}
	if arch.reports["run-1"] != r {
		t.Error("archived report is not the returned report")
	}
}

func TestRun_InvalidInput(t *testing.T) {
	ex := &stubExecutor{}
	p := newPipeline(ex)

	in := acme()
	in.BrandName = ""
	_, err := p.Run(context.Background(), in)
	if !errors.Is(err, campaign.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if ex.got != nil {
		t.Error("executor ran for invalid input")
	}
}

func TestRun_ArchiveFailureIsNotFatal(t *testing.T) {
	p := newPipeline(&stubExecutor{}, WithArchive(&memArchive{err: errors.New("bucket gone")}))

	r, err := p.Run(context.Background(), acme())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.ArchiveKey != "" {
		t.Errorf("ArchiveKey = %q, want empty after failed upload", r.ArchiveKey)
	}
}

func TestPlan(t *testing.T) {
	p := newPipeline(&stubExecutor{})

	plan, err := p.Plan(context.Background(), acme())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if diff := cmp.Diff(planner.Fallback(acme()), plan.Descriptors); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.Plan(context.Background(), campaign.Input{}); !errors.Is(err, campaign.ErrInvalidInput) {
		t.Errorf("empty input err = %v, want ErrInvalidInput", err)
	}
}
