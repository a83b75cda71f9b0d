package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Generator = (*Gemini)(nil)

// NewGemini creates a Gemini generator. An empty model selects gemini-2.0-flash.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, &Error{Kind: KindAPIKey, Provider: ProviderGemini, Message: "GEMINI_API_KEY is not set"}
	}
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions.BaseURL = opts.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns "gemini".
func (g *Gemini) Name() string { return ProviderGemini }

// Generate sends prompt as a single user turn and returns the response text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	callStart := time.Now()
	log.Debug().
		Str("model", g.model).
		Int("prompt_length", len(prompt)).
		Msg("Starting Gemini API call")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	duration := time.Since(callStart)
	if err != nil {
		log.Warn().Err(err).Dur("duration", duration).Msg("Gemini API call failed")
		return "", Classify(ProviderGemini, err)
	}
	if resp == nil {
		return "", &Error{Kind: KindUnknown, Provider: ProviderGemini, Message: "received empty response from Gemini API"}
	}

	text := resp.Text()
	evt := log.Debug().
		Int("response_length", len(text)).
		Dur("duration", duration)
	if resp.UsageMetadata != nil {
		evt = evt.
			Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("response_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	evt.Msg("Gemini API response received")

	if text == "" {
		return "", &Error{Kind: KindUnknown, Provider: ProviderGemini, Message: "Gemini returned no text"}
	}
	return text, nil
}
