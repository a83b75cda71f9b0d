package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/campaign-intel/internal/qloo"
)

// pingTimeout bounds the Qloo probe behind /api/health?deep=1.
const pingTimeout = 10 * time.Second

// maxTrending caps the limit query parameter of /api/trending.
const maxTrending = 50

// Culture is the Qloo surface behind the deep health check and the
// discovery endpoints.
type Culture interface {
	Ping(ctx context.Context) error
	Trending(ctx context.Context, entityType string, opts qloo.TrendingOptions) []qloo.Entity
	BrandInsights(ctx context.Context, brands []string, location string) qloo.CulturalInsights
}

// WithCulture enables /api/trending, /api/insights and the Qloo probe.
func WithCulture(c Culture) Option {
	return func(s *Server) { s.culture = c }
}

func (s *Server) requireCulture(w http.ResponseWriter) bool {
	if s.culture == nil {
		httpError(w, http.StatusServiceUnavailable, "Qloo is not configured")
		return false
	}
	return true
}

// probeQloo returns the Qloo status for a deep health check.
func (s *Server) probeQloo(ctx context.Context) (string, bool) {
	if s.culture == nil {
		return "not configured", false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.culture.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Qloo health probe failed")
		return "unreachable", false
	}
	return "ok", true
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if !s.requireCulture(w) {
		return
	}
	q := r.URL.Query()
	opts := qloo.TrendingOptions{Location: strings.TrimSpace(q.Get("location"))}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = min(n, maxTrending)
	}
	entityType := q.Get("type")
	if entityType == "" {
		entityType = qloo.TypeBrand
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"type":     entityType,
		"entities": s.culture.Trending(r.Context(), entityType, opts),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !s.requireCulture(w) {
		return
	}
	q := r.URL.Query()
	var brands []string
	for _, b := range q["brand"] {
		if b = strings.TrimSpace(b); b != "" {
			brands = append(brands, b)
		}
	}
	if len(brands) == 0 {
		httpError(w, http.StatusBadRequest, "at least one brand is required")
		return
	}
	respondJSON(w, http.StatusOK, s.culture.BrandInsights(r.Context(), brands, strings.TrimSpace(q.Get("location"))))
}
