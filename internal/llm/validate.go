package llm

import (
	"context"
	"time"

	"github.com/fpang/campaign-intel/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ValidateKey verifies that the generator's credentials work by making a
// minimal call. It returns nil on success or a classified *Error.
func ValidateKey(ctx context.Context, g Generator) error {
	log.Debug().Str("provider", g.Name()).Msg("Validating LLM API key")

	start := time.Now()
	_, err := g.Generate(ctx, "hi")
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = KindOf(err).String()
	}
	if metrics.EMFEnabled() {
		metrics.New(metrics.Namespace).
			Dimension("Provider", g.Name()).
			Dimension("Result", result).
			Duration("ApiKeyValidationMs", elapsed).
			Count("ApiKeyValidationResult").
			Flush()
	}

	if err != nil {
		e := Classify(g.Name(), err)
		log.Error().Err(err).Str("kind", e.Kind.String()).Msg("LLM API key validation failed")
		return e
	}

	log.Info().Str("provider", g.Name()).Dur("duration", elapsed).Msg("LLM API key validated successfully")
	return nil
}
