// Package api is the JSON HTTP surface shared by the local web server and the
// Lambda function.
//
// Endpoints:
//
//	GET    /api/health                           liveness and configured features; ?deep=1 also pings Qloo
//	POST   /api/campaign                         full run: plan, execute, analyze, analytics
//	POST   /api/plan                             query plan only
//	GET    /api/chat/actions                     quick action catalogue
//	POST   /api/chat/sessions                    open a session, optionally with a report as context
//	GET    /api/chat/{id}                        session transcript
//	POST   /api/chat/{id}/messages               send a message
//	POST   /api/chat/{id}/actions/{action}       start a quick action
//	POST   /api/chat/{id}/close                  save to history and close
//	GET    /api/history                          saved sessions, newest first
//	DELETE /api/history                          clear history
//	GET    /api/history/{id}                     one saved session
//	DELETE /api/history/{id}                     delete one saved session
//	POST   /api/history/{id}/open                reopen a saved session
//	GET    /api/trending                         weekly trending Qloo entities (?type=&location=&limit=)
//	GET    /api/insights                         cultural insights for brands (?brand=&brand=&location=)
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fpang/campaign-intel/internal/assistant"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/pipeline"
	"github.com/fpang/campaign-intel/internal/planner"
)

// Runner runs campaign briefs.
type Runner interface {
	Run(ctx context.Context, in campaign.Input) (*pipeline.Report, error)
	Plan(ctx context.Context, in campaign.Input) (planner.Plan, error)
}

// ReportReader loads an archived report by ID.
type ReportReader interface {
	Get(ctx context.Context, id string, out any) error
}

// Server holds the handler dependencies.
type Server struct {
	runner    Runner
	assistant *assistant.Assistant
	archive   ReportReader
	culture   Culture
	reports   *reportCache
	features  map[string]bool
}

// Option configures a Server.
type Option func(*Server)

// WithArchive lets sessions be opened from archived reports.
func WithArchive(r ReportReader) Option {
	return func(s *Server) { s.archive = r }
}

// WithFeature reports a named feature flag from /api/health.
func WithFeature(name string, enabled bool) Option {
	return func(s *Server) { s.features[name] = enabled }
}

// New creates a Server.
func New(runner Runner, a *assistant.Assistant, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		assistant: a,
		reports:   newReportCache(recentReports),
		features:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API wrapped with logging, CORS and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/campaign", s.handleCampaign)
	mux.HandleFunc("POST /api/plan", s.handlePlan)

	mux.HandleFunc("GET /api/chat/actions", s.handleActions)
	mux.HandleFunc("POST /api/chat/sessions", s.handleOpenSession)
	mux.HandleFunc("GET /api/chat/{id}", s.handleSession)
	mux.HandleFunc("POST /api/chat/{id}/messages", s.handleMessage)
	mux.HandleFunc("POST /api/chat/{id}/actions/{action}", s.handleQuickAction)
	mux.HandleFunc("POST /api/chat/{id}/close", s.handleCloseSession)

	mux.HandleFunc("GET /api/history", s.handleHistoryList)
	mux.HandleFunc("DELETE /api/history", s.handleHistoryClear)
	mux.HandleFunc("GET /api/history/{id}", s.handleHistoryGet)
	mux.HandleFunc("DELETE /api/history/{id}", s.handleHistoryDelete)
	mux.HandleFunc("POST /api/history/{id}/open", s.handleHistoryOpen)

	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/insights", s.handleInsights)

	return withLogging(withCORS(withMetrics(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":   "ok",
		"service":  "campaign-intel",
		"features": s.features,
	}
	status := http.StatusOK
	if deep, _ := strconv.ParseBool(r.URL.Query().Get("deep")); deep {
		qlooStatus, healthy := s.probeQloo(r.Context())
		body["qloo"] = qlooStatus
		if !healthy {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, status, body)
}
