package api

import "github.com/fpang/campaign-intel/internal/boot"

// FromServices builds the Server every deployment runs: the pipeline, the
// assistant, Qloo discovery, the archive when configured, and feature flags
// for /api/health.
func FromServices(svc *boot.Services) *Server {
	opts := []Option{
		WithFeature("llm", svc.Generator != nil),
		WithFeature("qloo", svc.Config.Qloo.APIKey != ""),
		WithFeature("archive", svc.Archive != nil),
		WithCulture(svc.Qloo),
	}
	if svc.Archive != nil {
		opts = append(opts, WithArchive(svc.Archive))
	}
	return New(svc.Pipeline, svc.Assistant, opts...)
}
