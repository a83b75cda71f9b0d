// Package planner turns a campaign into the list of Qloo query descriptors
// the executor runs. The LLM drafts the plan; whenever that fails the
// deterministic Fallback plan is used instead.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/campaign-intel/internal/assets"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/jsonutil"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/metrics"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/rs/zerolog/log"
)

// SourceFallback labels a plan built by Fallback.
const SourceFallback = "fallback"

// errEmptyPlan is recorded when the model returns a parseable but empty array.
var errEmptyPlan = errors.New("model returned no queries")

// Plan is the planner output. Source is the provider name when the model's
// plan was used and "fallback" otherwise, in which case Reason says why.
type Plan struct {
	Descriptors []qloo.Descriptor `json:"descriptors"`
	Source      string            `json:"source"`
	Reason      string            `json:"reason,omitempty"`
}

// Fallback reports whether the plan came from Fallback.
func (p Plan) Fallback() bool { return p.Source == SourceFallback }

// Planner drafts query plans with a Generator.
type Planner struct {
	gen llm.Generator
}

// New creates a Planner. A nil Generator makes every plan a fallback plan.
func New(gen llm.Generator) *Planner {
	return &Planner{gen: gen}
}

// Plan asks the model for a query plan and never fails: any error (model
// call, missing array, malformed JSON, empty result) yields Fallback(in).
func (p *Planner) Plan(ctx context.Context, in campaign.Input) Plan {
	start := time.Now()
	plan := p.plan(ctx, in)
	metrics.RecordStage("plan", plan.Source, time.Since(start))
	return plan
}

func (p *Planner) plan(ctx context.Context, in campaign.Input) Plan {
	if p.gen == nil {
		return fallbackPlan(in, errors.New("no language model configured"))
	}

	text, err := p.gen.Generate(ctx, Prompt(in))
	if err != nil {
		return fallbackPlan(in, err)
	}

	descriptors, err := jsonutil.ParseRepaired[[]qloo.Descriptor](text, '[')
	if err != nil {
		return fallbackPlan(in, fmt.Errorf("parse plan: %w", err))
	}
	if len(descriptors) == 0 {
		return fallbackPlan(in, errEmptyPlan)
	}

	logBareQueries(descriptors)
	log.Info().
		Str("source", p.gen.Name()).
		Int("queries", len(descriptors)).
		Str("brand", in.BrandName).
		Msg("Query plan generated")
	return Plan{Descriptors: descriptors, Source: p.gen.Name()}
}

// Prompt renders the planner prompt for in. The fallback plan doubles as the
// illustrated example so the model sees the exact descriptor shape.
func Prompt(in campaign.Input) string {
	example, err := json.MarshalIndent(Fallback(in)[:3], "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode example plan")
	}
	return assets.RenderPlannerPrompt(assets.PlannerData{
		Campaign:    in.PromptData(),
		EntityTypes: qloo.EntityTypes,
		Weights: []string{
			qloo.WeightVeryLow, qloo.WeightLow, qloo.WeightMid,
			qloo.WeightMedium, qloo.WeightHigh, qloo.WeightVeryHigh,
		},
		Example: string(example),
	})
}

func fallbackPlan(in campaign.Input, reason error) Plan {
	log.Warn().Err(reason).Str("brand", in.BrandName).Msg("Using fallback query plan")
	return Plan{
		Descriptors: Fallback(in),
		Source:      SourceFallback,
		Reason:      reason.Error(),
	}
}

// logBareQueries notes ".query" parameters the model sent as a bare string
// instead of an array. They are passed through as-is.
func logBareQueries(descriptors []qloo.Descriptor) {
	for i, d := range descriptors {
		for k, v := range d.Parameters {
			if !strings.HasSuffix(k, ".query") || strings.HasSuffix(k, "location.query") {
				continue
			}
			if _, ok := v.(string); ok {
				log.Debug().Int("index", i).Str("key", k).Msg("Planner emitted bare-string query value")
			}
		}
	}
}
