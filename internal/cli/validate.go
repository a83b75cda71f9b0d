package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/llm"
)

// HandleValidationError logs a classified key validation failure and exits.
func HandleValidationError(err error) {
	switch llm.KindOf(err) {
	case llm.KindAPIKey:
		log.Fatal().Err(err).Msg("Invalid API key. Set GEMINI_API_KEY (or OPENAI_API_KEY with llm.provider=openai) and try again")
	case llm.KindNetwork:
		log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
	case llm.KindQuota:
		log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
	case llm.KindTimeout:
		log.Fatal().Err(err).Msg("API key validation timed out. Please try again")
	default:
		log.Fatal().Err(err).Msg("API key validation failed")
	}
	os.Exit(1)
}

// ReadBrief loads and validates a campaign brief from a JSON file. "-" reads
// standard input.
func ReadBrief(path string) (campaign.Input, error) {
	var in campaign.Input
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return in, fmt.Errorf("open brief: %w", err)
		}
		defer f.Close()
	}
	if err := json.NewDecoder(f).Decode(&in); err != nil {
		return in, fmt.Errorf("decode brief %s: %w", path, err)
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
