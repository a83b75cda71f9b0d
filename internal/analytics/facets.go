// Package analytics produces the chart data shown next to a campaign
// analysis: three model-drafted facets (basic insights, audience data and
// geospatial data), each with a generic fallback, plus charts derived
// deterministically from the Qloo results and the analysis.
package analytics

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
	"golang.org/x/sync/errgroup"
)

// SourceFallback is the Source of a facet built from its fallback dataset.
const SourceFallback = "fallback"

// Facet names.
const (
	FacetBasicInsights  = "basicInsights"
	FacetAudienceData   = "audienceData"
	FacetGeospatialData = "geospatialData"
)

// maxFacetEntities bounds how many entities per facet are sent to the model.
const maxFacetEntities = 40

// Facet is one model-drafted chart.
type Facet struct {
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Dataset Dataset `json:"dataset"`
	Source  string  `json:"source"`
	Reason  string  `json:"reason,omitempty"`
}

// Fallback reports whether the facet holds its fallback dataset.
func (f Facet) Fallback() bool { return f.Source == SourceFallback }

// Analytics is the joined output of the three facets.
type Analytics struct {
	BasicInsights  Facet `json:"basicInsights"`
	AudienceData   Facet `json:"audienceData"`
	GeospatialData Facet `json:"geospatialData"`
}

// Facets returns the three facets in display order.
func (a Analytics) Facets() []Facet {
	return []Facet{a.BasicInsights, a.AudienceData, a.GeospatialData}
}

type facetSpec struct {
	name     string
	title    string
	focus    string
	types    map[string]bool
	fallback func() Dataset
}

var facetSpecs = []facetSpec{
	{
		name:  FacetBasicInsights,
		title: "Basic Insights",
		focus: "Chart how strongly the brands, media and cultural entities found for this campaign resonate. " +
			`Use up to 8 entity names as labels and one series labelled "Popularity" with values from 0 to 100.`,
		types: map[string]bool{
			qloo.TypeBrand: true, qloo.TypeArtist: true, qloo.TypeMovie: true, qloo.TypeTVShow: true,
			qloo.TypePodcast: true, qloo.TypeBook: true, qloo.TypeVideoGame: true,
		},
		fallback: basicInsightsFallback,
	},
	{
		name:  FacetAudienceData,
		title: "Audience Data",
		focus: "Chart audience engagement by age band. Use exactly the labels 18-24, 25-34, 35-44, 45-54, 55-64 and 65+ " +
			`and one series labelled "Audience Engagement" with values from 0 to 100.`,
		types:    map[string]bool{qloo.TypePerson: true},
		fallback: audienceFallback,
	},
	{
		name:  FacetGeospatialData,
		title: "Geospatial Data",
		focus: "Chart the neighbourhoods and venues most relevant to the campaign location. " +
			`Use up to 6 place names as labels and one series labelled "Location Relevance" with values from 0 to 100.`,
		types:    map[string]bool{qloo.TypePlace: true, qloo.TypeDestination: true},
		fallback: geospatialFallback,
	},
}

func basicInsightsFallback() Dataset {
	labels := []string{"Brand Awareness", "Cultural Alignment", "Market Interest", "Trend Momentum", "Content Affinity"}
	return Dataset{
		Labels: labels,
		Series: []Series{{
			Label:           "Popularity",
			Data:            []float64{65, 70, 60, 55, 62},
			BackgroundColor: fills(palette[:5], 0.8),
			BorderColor:     fills(palette[:5], 1),
		}},
	}
}

func audienceFallback() Dataset {
	return Dataset{
		Labels: []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+"},
		Series: []Series{{
			Label:           "Audience Engagement",
			Data:            []float64{72, 85, 70, 58, 42, 30},
			BackgroundColor: fills(palette, 0.8),
			BorderColor:     fills(palette, 1),
		}},
	}
}

func geospatialFallback() Dataset {
	return Dataset{
		Labels: []string{"Downtown", "Arts District", "Waterfront", "University Area", "Business District"},
		Series: []Series{{
			Label:           "Location Relevance",
			Data:            []float64{82, 76, 70, 64, 58},
			BackgroundColor: Colors{blue.alpha(0.8)},
			BorderColor:     Colors{blue.alpha(1)},
		}},
	}
}

// CultureSource supplies Qloo data the audience and geospatial facets chart
// alongside the planned query results.
type CultureSource interface {
	Audiences(ctx context.Context, entityIDs []string, location string) []qloo.Audience
	Geospatial(ctx context.Context, location string) []qloo.Entity
}

// maxAudienceSignals bounds how many result entities seed the audience lookup.
const maxAudienceSignals = 5

// Synthesizer drafts the analytics facets with a Generator.
type Synthesizer struct {
	gen     llm.Generator
	culture CultureSource
}

// New creates a Synthesizer. A nil Generator yields fallback facets.
func New(gen llm.Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// WithCulture adds Qloo audience segments to the audience facet and popular
// places near the campaign location to the geospatial facet.
func (s *Synthesizer) WithCulture(src CultureSource) *Synthesizer {
	s.culture = src
	return s
}

var errNoGenerator = errors.New("no language model configured")

// Synthesize issues the three facet calls concurrently and joins them. It
// never fails: each facet falls back independently.
func (s *Synthesizer) Synthesize(ctx context.Context, in campaign.Input, results []qloo.Result) Analytics {
	start := time.Now()
	extra := s.gatherCulture(ctx, in, results)
	facets := make([]Facet, len(facetSpecs))

	var g errgroup.Group
	for i, spec := range facetSpecs {
		g.Go(func() error {
			facets[i] = s.facet(ctx, in, spec, results, extra[spec.name])
			return nil
		})
	}
	_ = g.Wait()

	fellBack := 0
	for _, f := range facets {
		if f.Fallback() {
			fellBack++
		}
	}
	log.Info().
		Str("brand", in.BrandName).
		Int("fallbacks", fellBack).
		Dur("duration", time.Since(start)).
		Msg("Analytics facets generated")

	return Analytics{BasicInsights: facets[0], AudienceData: facets[1], GeospatialData: facets[2]}
}

// gatherCulture fetches the supplementary facet data concurrently, keyed by
// facet name. It is skipped when no model would read it.
func (s *Synthesizer) gatherCulture(ctx context.Context, in campaign.Input, results []qloo.Result) map[string][]facetEntity {
	extra := map[string][]facetEntity{}
	if s.culture == nil || s.gen == nil {
		return extra
	}

	var audiences []qloo.Audience
	var places []qloo.Entity
	var g errgroup.Group
	if ids := signalEntityIDs(results); len(ids) > 0 {
		g.Go(func() error {
			audiences = s.culture.Audiences(ctx, ids, in.Location)
			return nil
		})
	}
	g.Go(func() error {
		places = s.culture.Geospatial(ctx, in.Location)
		return nil
	})
	_ = g.Wait()

	for _, a := range audiences {
		extra[FacetAudienceData] = append(extra[FacetAudienceData], facetEntity{
			Query:  "Qloo audience segments",
			Name:   a.Name,
			Rating: a.Match,
			Detail: a.Description,
		})
	}
	for _, e := range places {
		extra[FacetGeospatialData] = append(extra[FacetGeospatialData], facetEntity{
			Query:      "Popular places near " + in.Location,
			Name:       e.Name,
			Popularity: e.Popularity,
			Rating:     e.Score(),
			Place:      e.Place(),
		})
	}
	return extra
}

// signalEntityIDs returns the first entity IDs found in successful brand
// and media results, the interests an audience lookup is seeded with.
func signalEntityIDs(results []qloo.Result) []string {
	basic := facetSpecs[0].types
	var ids []string
	for _, r := range results {
		if !basic[r.Query.EntityType] {
			continue
		}
		for _, e := range r.Entities() {
			if e.EntityID == "" {
				continue
			}
			ids = append(ids, e.EntityID)
			if len(ids) == maxAudienceSignals {
				return ids
			}
		}
	}
	return ids
}

func (s *Synthesizer) facet(ctx context.Context, in campaign.Input, spec facetSpec, results []qloo.Result, extra []facetEntity) Facet {
	start := time.Now()
	f := s.draft(ctx, in, spec, results, extra)
	metrics.RecordStage("analytics."+spec.name, f.Source, time.Since(start))
	return f
}

func (s *Synthesizer) draft(ctx context.Context, in campaign.Input, spec facetSpec, results []qloo.Result, extra []facetEntity) Facet {
	if s.gen == nil {
		return facetFallback(spec, errNoGenerator)
	}

	text, err := s.gen.Generate(ctx, facetPrompt(in, spec, results, extra))
	if err != nil {
		return facetFallback(spec, err)
	}
	ds, err := jsonutil.ParseRepaired[Dataset](text, '{')
	if err != nil {
		return facetFallback(spec, fmt.Errorf("parse %s: %w", spec.name, err))
	}
	if err := ds.Check(); err != nil {
		return facetFallback(spec, fmt.Errorf("parse %s: %w", spec.name, err))
	}
	return Facet{Name: spec.name, Title: spec.title, Dataset: ds, Source: s.gen.Name()}
}

func facetFallback(spec facetSpec, reason error) Facet {
	log.Warn().Err(reason).Str("facet", spec.name).Msg("Using fallback analytics facet")
	return Facet{
		Name:    spec.name,
		Title:   spec.title,
		Dataset: spec.fallback(),
		Source:  SourceFallback,
		Reason:  reason.Error(),
	}
}

// facetEntity is the compact entity view sent to the model.
type facetEntity struct {
	Query      string  `json:"query"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Place      string  `json:"place,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// facetData returns the entities of successful results whose entity type
// belongs to the facet, capped at maxFacetEntities.
func facetData(spec facetSpec, results []qloo.Result) []facetEntity {
	out := []facetEntity{}
	for _, r := range results {
		if !spec.types[r.Query.EntityType] {
			continue
		}
		for _, e := range r.Entities() {
			if len(out) == maxFacetEntities {
				return out
			}
			out = append(out, facetEntity{
				Query:      r.Query.Description,
				Name:       e.Name,
				Popularity: e.Popularity,
				Rating:     e.Score(),
				Place:      e.Place(),
			})
		}
	}
	return out
}

// facetPrompt renders the prompt for one facet. extra entities lead the
// source data and count toward maxFacetEntities.
func facetPrompt(in campaign.Input, spec facetSpec, results []qloo.Result, extra []facetEntity) string {
	entities := make([]facetEntity, 0, maxFacetEntities)
	entities = append(append(entities, extra...), facetData(spec, results)...)
	if len(entities) > maxFacetEntities {
		entities = entities[:maxFacetEntities]
	}
	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		data = []byte("[]")
	}
	example, err := json.MarshalIndent(spec.fallback(), "", "  ")
	if err != nil {
		example = []byte("{}")
	}
	return assets.RenderFacetPrompt(assets.FacetData{
		Campaign: in.PromptData(),
		Title:    spec.title,
		Focus:    spec.focus,
		DataJSON: string(data),
		Example:  string(example),
	})
}
