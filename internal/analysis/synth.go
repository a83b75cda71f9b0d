// Package analysis turns executed Qloo results into a structured campaign
// strategy. The model's answer is extracted, repaired, parsed and checked
// against a JSON Schema reflected from CampaignAnalysis; anything that fails
// on the way is replaced by Fallback.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fpang/campaign-intel/internal/assets"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/jsonutil"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/metrics"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/rs/zerolog/log"
)

// Kind says whether a Result holds the model's analysis or the fallback.
type Kind string

const (
	KindParsed   Kind = "parsed"
	KindFallback Kind = "fallback"
)

// SourceFallback is the Source of a fallback Result.
const SourceFallback = "fallback"

// Result is the synthesizer output. Source is the provider name for parsed
// results; Reason explains a fallback.
type Result struct {
	Kind     Kind             `json:"kind"`
	Analysis CampaignAnalysis `json:"analysis"`
	Source   string           `json:"source"`
	Reason   string           `json:"reason,omitempty"`
}

// Fallback reports whether r carries the fallback analysis.
func (r Result) Fallback() bool { return r.Kind == KindFallback }

// Synthesizer produces analyses and ad-hoc campaign content with a Generator.
type Synthesizer struct {
	gen llm.Generator
}

// New creates a Synthesizer. A nil Generator makes every analysis a fallback
// and every content request an error.
func New(gen llm.Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

var errNoGenerator = errors.New("no language model configured")

// Synthesize asks the model for the full campaign analysis. It never fails;
// see Result.Kind.
func (s *Synthesizer) Synthesize(ctx context.Context, in campaign.Input, results []qloo.Result) Result {
	start := time.Now()
	res := s.synthesize(ctx, in, results)
	metrics.RecordStage("analysis", res.Source, time.Since(start))
	return res
}

func (s *Synthesizer) synthesize(ctx context.Context, in campaign.Input, results []qloo.Result) Result {
	if s.gen == nil {
		return fallback(in, errNoGenerator)
	}

	text, err := s.gen.Generate(ctx, Prompt(in, results))
	if err != nil {
		return fallback(in, err)
	}

	analysis, err := Parse(text)
	if err != nil {
		return fallback(in, err)
	}

	log.Info().
		Str("source", s.gen.Name()).
		Str("brand", in.BrandName).
		Int("findings", len(analysis.KeyFindings())).
		Msg("Campaign analysis generated")
	return Result{Kind: KindParsed, Analysis: analysis, Source: s.gen.Name()}
}

func fallback(in campaign.Input, reason error) Result {
	log.Warn().Err(reason).Str("brand", in.BrandName).Msg("Using fallback campaign analysis")
	return Result{
		Kind:     KindFallback,
		Analysis: Fallback(),
		Source:   SourceFallback,
		Reason:   reason.Error(),
	}
}

// Parse extracts the first balanced JSON object from text, repairs it if
// needed, validates it against Schema and decodes it.
func Parse(text string) (CampaignAnalysis, error) {
	doc, err := jsonutil.ParseRepaired[map[string]any](text, '{')
	if err != nil {
		return CampaignAnalysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	if err := Validate(doc); err != nil {
		return CampaignAnalysis{}, err
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return CampaignAnalysis{}, fmt.Errorf("re-encode analysis: %w", err)
	}
	var analysis CampaignAnalysis
	if err := json.Unmarshal(b, &analysis); err != nil {
		return CampaignAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return analysis, nil
}

// Prompt renders the analysis prompt: the campaign, every executed query and
// every result (failures included) as JSON, an illustrated example and the
// schema the answer must satisfy.
func Prompt(in campaign.Input, results []qloo.Result) string {
	queries := make([]qloo.Descriptor, len(results))
	for i, r := range results {
		queries[i] = r.Query
	}
	return assets.RenderAnalysisPrompt(assets.AnalysisData{
		Campaign:    in.PromptData(),
		QueriesJSON: indentJSON(queries),
		ResultsJSON: indentJSON(results),
		Example:     indentJSON(example(in.Location)),
		Schema:      SchemaJSON(),
	})
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode prompt data")
		return "null"
	}
	return string(b)
}
