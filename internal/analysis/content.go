package analysis

import (
	"context"
	"fmt"

	"github.com/fpang/campaign-intel/internal/assets"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/rs/zerolog/log"
)

// ContentKind selects the brief GenerateContent writes.
type ContentKind string

const (
	ContentPressRelease ContentKind = "pressRelease"
	ContentSocialMedia  ContentKind = "socialMedia"
	ContentBlogPost     ContentKind = "blogPost"
)

// GenerateContent writes free-form campaign content of the given kind.
// Unknown kinds get a generic marketing brief.
func (s *Synthesizer) GenerateContent(ctx context.Context, in campaign.Input, kind ContentKind) (string, error) {
	prompt := assets.RenderContentPrompt(assets.ContentData{Campaign: in.PromptData(), Kind: string(kind)})
	return s.freeform(ctx, "content", prompt)
}

// CrisisResponse drafts a crisis response plan for the named crisis.
func (s *Synthesizer) CrisisResponse(ctx context.Context, in campaign.Input, crisis string) (string, error) {
	prompt := assets.RenderCrisisPrompt(assets.CrisisData{Campaign: in.PromptData(), Crisis: crisis})
	return s.freeform(ctx, "crisis response", prompt)
}

// CompetitorAnalysis compares the brand against competitors. comparison is an
// optional Qloo taste-overlap summary between the brand and the first
// competitor; pass nil to omit it.
func (s *Synthesizer) CompetitorAnalysis(ctx context.Context, in campaign.Input, competitors []string, comparison *qloo.Comparison) (string, error) {
	data := assets.CompetitorData{Campaign: in.PromptData(), Competitors: competitors}
	if comparison != nil {
		data.Comparison = indentJSON(comparison)
	}
	return s.freeform(ctx, "competitor analysis", assets.RenderCompetitorPrompt(data))
}

func (s *Synthesizer) freeform(ctx context.Context, what, prompt string) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("generate %s: %w", what, errNoGenerator)
	}
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("content", what).Msg("Content generation failed")
		return "", fmt.Errorf("generate %s: %w", what, err)
	}
	return text, nil
}
