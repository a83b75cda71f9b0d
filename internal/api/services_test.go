package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/fpang/campaign-intel/internal/boot"
	"github.com/fpang/campaign-intel/internal/config"
	"github.com/fpang/campaign-intel/internal/planner"
)

func TestFromServices(t *testing.T) {
	cfg := &config.Config{
		Environment: "test",
		LLM:         config.LLMConfig{Provider: config.ProviderGemini},
		Qloo:        config.QlooConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, Concurrency: 1},
		History:     config.HistoryConfig{Backend: config.BackendMemory, Key: "test_history"},
		Server:      config.ServerConfig{Port: 8080},
	}
	noAWS := func(context.Context) (aws.Config, error) {
		return aws.Config{}, errors.New("no AWS in tests")
	}
	svc, err := boot.New(context.Background(), cfg, noAWS)
	if err != nil {
		t.Fatalf("boot.New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	srv := httptest.NewServer(FromServices(svc).Handler())
	t.Cleanup(srv.Close)

	resp := do(t, http.MethodGet, srv.URL+"/api/health", "")
	wantStatus(t, resp, http.StatusOK)
	body := decode[map[string]any](t, resp)
	features, _ := body["features"].(map[string]any)
	for _, name := range []string{"llm", "qloo", "archive"} {
		if features[name] != false {
			t.Errorf("feature %s = %v, want false", name, features[name])
		}
	}

	// Qloo points at a closed port.
	resp = do(t, http.MethodGet, srv.URL+"/api/health?deep=1", "")
	wantStatus(t, resp, http.StatusServiceUnavailable)
	if body := decode[map[string]any](t, resp); body["qloo"] != "unreachable" || body["status"] != "degraded" {
		t.Errorf("deep health = %v", body)
	}

	resp = do(t, http.MethodPost, srv.URL+"/api/plan", briefJSON)
	wantStatus(t, resp, http.StatusOK)
	if plan := decode[planner.Plan](t, resp); plan.Source != planner.SourceFallback || len(plan.Descriptors) == 0 {
		t.Errorf("plan = %+v, want fallback descriptors", plan)
	}
}
