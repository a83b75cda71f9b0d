// Package llm is the prompt-in, text-out boundary to the language model.
// Gemini is the default provider; OpenAI's Responses API is the alternate.
// Every failure is returned as an *Error carrying a Kind the callers use to
// pick a fallback or a user-facing message.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/fpang/campaign-intel/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name is the provider label recorded as a result's Source.
	Name() string
}

// GeneratorFunc adapts a function to Generator. Tests use it as a stub.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name returns "stub".
func (f GeneratorFunc) Name() string { return "stub" }

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Options configures New.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint; empty uses the provider default.
	BaseURL string
}

// New builds the Generator for opts.Provider, wrapped with metrics.
func New(ctx context.Context, opts Options) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch opts.Provider {
	case ProviderGemini, "":
		g, err = NewGemini(ctx, opts)
	case ProviderOpenAI:
		g, err = NewOpenAI(opts)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(g), nil
}

type instrumented struct {
	next Generator
}

// Instrument wraps g so every call is counted and timed.
func Instrument(g Generator) Generator {
	if _, ok := g.(*instrumented); ok {
		return g
	}
	return &instrumented{next: g}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := i.next.Generate(ctx, prompt)
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = KindOf(err).String()
	}
	metrics.RecordLLMCall(i.next.Name(), result, elapsed)

	log.Debug().
		Str("provider", i.next.Name()).
		Str("result", result).
		Int("prompt_length", len(prompt)).
		Int("response_length", len(text)).
		Dur("duration", elapsed).
		Msg("LLM call finished")
	return text, err
}
