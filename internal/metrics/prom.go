package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_llm_calls_total",
			Help: "Total LLM generate calls by provider and outcome",
		},
		[]string{"provider", "result"},
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaign_llm_call_duration_seconds",
			Help:    "Duration of LLM generate calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider"},
	)

	QlooRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_qloo_requests_total",
			Help: "Total Qloo API requests by method, path, and status class",
		},
		[]string{"method", "path", "status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaign_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage", "source"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_fallbacks_total",
			Help: "Number of times a component served hand-authored fallback content",
		},
		[]string{"component"},
	)

	ChatSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campaign_chat_sessions_active",
			Help: "Number of open assistant sessions",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_http_requests_total",
			Help: "HTTP API requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
)

// StatusClass buckets an HTTP status code ("2xx", "4xx", ...); zero means the
// request never produced a response.
func StatusClass(code int) string {
	switch {
	case code == 0:
		return "error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// RecordLLMCall updates the LLM collectors and, under Lambda, emits an EMF document.
func RecordLLMCall(provider, result string, elapsed time.Duration) {
	LLMCalls.WithLabelValues(provider, result).Inc()
	LLMLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
	if EMFEnabled() {
		New(Namespace).
			Dimension("Provider", provider).
			Dimension("Result", result).
			Duration("LLMCallMs", elapsed).
			Count("LLMCallCount").
			Flush()
	}
}

// RecordQlooRequest updates the Qloo collectors and, under Lambda, emits an EMF document.
func RecordQlooRequest(method, path string, statusCode int, elapsed time.Duration) {
	class := StatusClass(statusCode)
	QlooRequests.WithLabelValues(method, path, class).Inc()
	if EMFEnabled() {
		New(Namespace).
			Dimension("Path", path).
			Dimension("Status", class).
			Duration("QlooRequestMs", elapsed).
			Count("QlooRequestCount").
			Flush()
	}
}

// RecordStage observes how long a pipeline stage took and which source
// ("gemini", "openai", "fallback", "qloo") produced its output.
func RecordStage(stage, source string, elapsed time.Duration) {
	StageDuration.WithLabelValues(stage, source).Observe(elapsed.Seconds())
	if source == "fallback" {
		Fallbacks.WithLabelValues(stage).Inc()
	}
	if EMFEnabled() {
		New(Namespace).
			Dimension("Stage", stage).
			Dimension("Source", source).
			Duration("StageMs", elapsed).
			Flush()
	}
}
