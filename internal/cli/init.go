// Package cli holds the helpers shared by the command-line binaries: start-up,
// interactive prompts, brief loading, and terminal formatting.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/campaign-intel/internal/boot"
	"github.com/fpang/campaign-intel/internal/config"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/logging"
)

// Build identifies the running binary in the startup log.
type Build struct {
	Name       string
	CommitHash string
	BuildTime  string
}

// Init loads configuration, sets the log level and builds the services.
// When validateKey is set and an LLM key is configured, the key is checked
// with a minimal call first. Exits fatally on failure.
func Init(ctx context.Context, b Build, validateKey bool) *boot.Services {
	start := time.Now()
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.InitLevel(cfg.Log.Level)

	svc, err := boot.New(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	if validateKey && svc.Generator != nil {
		if err := llm.ValidateKey(ctx, svc.Generator); err != nil {
			HandleValidationError(err)
		}
	}
	svc.Startup(b.Name).
		CommitHash(b.CommitHash).
		BuildTime(b.BuildTime).
		InitDuration(time.Since(start)).
		Log()
	return svc
}
