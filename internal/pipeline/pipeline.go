// Package pipeline runs a campaign brief end to end: plan the Qloo queries,
// execute them, then synthesize the analysis and the analytics facets, derive
// the charts, and optionally archive the resulting report.
package pipeline

import (
	"context"
	"time"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/analytics"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/metrics"
	"github.com/fpang/campaign-intel/internal/planner"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Planner turns a brief into query descriptors.
type Planner interface {
	Plan(ctx context.Context, in campaign.Input) planner.Plan
}

// Executor runs descriptors against Qloo, one Result per descriptor.
type Executor interface {
	Execute(ctx context.Context, descriptors []qloo.Descriptor) []qloo.Result
}

// Analyzer writes the campaign analysis.
type Analyzer interface {
	Synthesize(ctx context.Context, in campaign.Input, results []qloo.Result) analysis.Result
}

// FacetSynthesizer drafts the analytics facets.
type FacetSynthesizer interface {
	Synthesize(ctx context.Context, in campaign.Input, results []qloo.Result) analytics.Analytics
}

// Archiver stores finished reports and returns their location.
type Archiver interface {
	Put(ctx context.Context, id string, report any) (string, error)
}

// Report is the outcome of one run.
type Report struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"createdAt"`
	Input      campaign.Input      `json:"campaignData"`
	Plan       planner.Plan        `json:"plan"`
	Results    []qloo.Result       `json:"qlooResults"`
	Analysis   analysis.Result     `json:"analysis"`
	Analytics  analytics.Analytics `json:"analytics"`
	Charts     analytics.Charts    `json:"charts"`
	DurationMs int64               `json:"durationMs"`
	ArchiveKey string              `json:"archiveKey,omitempty"`
}

// Successes counts the Qloo queries that returned data.
func (r *Report) Successes() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// Pipeline wires the stages together.
type Pipeline struct {
	planner  Planner
	executor Executor
	analyzer Analyzer
	facets   FacetSynthesizer
	archive  Archiver

	now   func() time.Time
	newID func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithArchive stores every report with a. A nil Archiver disables archiving.
func WithArchive(a Archiver) Option {
	return func(p *Pipeline) { p.archive = a }
}

// New creates a Pipeline from its stages.
func New(pl Planner, ex Executor, an Analyzer, fs FacetSynthesizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		planner:  pl,
		executor: ex,
		analyzer: an,
		facets:   fs,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan validates in and returns the query plan without executing it.
func (p *Pipeline) Plan(ctx context.Context, in campaign.Input) (planner.Plan, error) {
	if err := in.Validate(); err != nil {
		return planner.Plan{}, err
	}
	return p.planner.Plan(ctx, in), nil
}

// Run executes every stage for in. The only error is a validation failure;
// model and Qloo failures surface as fallback sources in the report, and a
// failed archive upload leaves ArchiveKey empty.
func (p *Pipeline) Run(ctx context.Context, in campaign.Input) (*Report, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	r := &Report{ID: p.newID(), CreatedAt: p.now().UTC(), Input: in}
	logger := log.With().Str("report", r.ID).Str("brand", in.BrandName).Logger()

	r.Plan = p.planner.Plan(ctx, in)
	logger.Info().
		Int("queries", len(r.Plan.Descriptors)).
		Str("source", r.Plan.Source).
		Msg("Queries planned")

	stage := time.Now()
	r.Results = p.executor.Execute(ctx, r.Plan.Descriptors)
	metrics.RecordStage("execute", "qloo", time.Since(stage))
	logger.Info().
		Int("successful", r.Successes()).
		Int("total", len(r.Results)).
		Dur("duration", time.Since(stage)).
		Msg("Qloo queries executed")

	// The facets only read the results, so they are drafted alongside the
	// analysis.
	var g errgroup.Group
	g.Go(func() error {
		r.Analysis = p.analyzer.Synthesize(ctx, in, r.Results)
		return nil
	})
	g.Go(func() error {
		r.Analytics = p.facets.Synthesize(ctx, in, r.Results)
		return nil
	})
	_ = g.Wait()

	r.Charts = analytics.DeriveCharts(r.Results, &r.Analysis.Analysis)

	if p.archive != nil {
		key, err := p.archive.Put(ctx, r.ID, r)
		if err != nil {
			logger.Warn().Err(err).Msg("Report archive failed")
		} else {
			r.ArchiveKey = key
		}
	}

	elapsed := time.Since(start)
	r.DurationMs = elapsed.Milliseconds()
	metrics.RecordStage("pipeline", "run", elapsed)
	if metrics.EMFEnabled() {
		metrics.New(metrics.Namespace).
			Dimension("Scope", string(in.TargetScope)).
			Duration("PipelineMs", elapsed).
			Metric("QlooSuccesses", float64(r.Successes()), metrics.UnitCount).
			Count("PipelineRuns").
			Property("reportId", r.ID).
			Property("analysisSource", r.Analysis.Source).
			Flush()
	}
	logger.Info().
		Str("analysis_source", r.Analysis.Source).
		Dur("duration", elapsed).
		Msg("Campaign pipeline complete")
	return r, nil
}
