package qloo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// SearchOptions narrows a Search call.
type SearchOptions struct {
	Limit    int
	Type     string
	Location string
	// MinPopularity is sent as filter.popularity.min when > 0.
	MinPopularity float64
	// MaxPopularity is sent as filter.popularity.max when in (0, 1).
	MaxPopularity float64
}

// Search looks up entities by name. On failure with a location filter it
// retries exactly once without the location; a final failure yields an empty
// list.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) []Entity {
	entities, err := c.search(ctx, query, opts)
	if err == nil {
		return entities
	}
	log.Warn().Err(err).Str("query", query).Str("location", opts.Location).Msg("Qloo search failed")
	if opts.Location == "" {
		return []Entity{}
	}

	opts.Location = ""
	entities, err = c.search(ctx, query, opts)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Qloo search failed without location")
		return []Entity{}
	}
	return entities
}

func (c *Client) search(ctx context.Context, query string, opts SearchOptions) ([]Entity, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("take", strconv.Itoa(max(opts.Limit, 2)))
	q.Set("include.popularity", "true")
	q.Set("include.tags", "true")
	q.Set("include.metrics", "all")
	if opts.Type != "" {
		q.Set("filter.type", opts.Type)
	}
	if loc := strings.TrimSpace(opts.Location); loc != "" {
		q.Set("filter.location", loc)
	}
	addPopularity(q, opts.MinPopularity, opts.MaxPopularity)

	var resp struct {
		Results []Entity `json:"results"`
	}
	if err := c.getJSON(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []Entity{}, nil
	}
	return resp.Results, nil
}

// TrendingOptions narrows a Trending call.
type TrendingOptions struct {
	Limit         int
	Location      string
	MinPopularity float64
}

// Trending returns weekly trending entities of the given type. Failure yields
// an empty list.
func (c *Client) Trending(ctx context.Context, entityType string, opts TrendingOptions) []Entity {
	if entityType == "" {
		entityType = TypeBrand
	}
	q := url.Values{}
	q.Set("type", entityType)
	q.Set("take", strconv.Itoa(max(opts.Limit, 2)))
	q.Set("period", "weekly")
	if opts.Location != "" {
		q.Set("filter.location", opts.Location)
	}
	addPopularity(q, opts.MinPopularity, 0)

	var resp struct {
		Results struct {
			Entities []Entity `json:"entities"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/trends/category", q, &resp); err != nil {
		log.Warn().Err(err).Str("type", entityType).Msg("Qloo trending failed")
		return []Entity{}
	}
	if resp.Results.Entities == nil {
		return []Entity{}
	}
	return resp.Results.Entities
}

// CulturalInsights summarises the taste profile around a set of entities.
type CulturalInsights struct {
	Entities        []Entity   `json:"entities"`
	Tags            []string   `json:"tags"`
	Audiences       []Audience `json:"audiences"`
	CulturalDomains []string   `json:"cultural_domains"`
	Confidence      float64    `json:"confidence"`
}

// Insights returns cultural insights for entityIDs, optionally biased toward
// a location. With no entity IDs, or on failure, a canned profile is returned.
func (c *Client) Insights(ctx context.Context, entityIDs []string, location string) CulturalInsights {
	if len(entityIDs) == 0 {
		return MockCulturalInsights()
	}
	q := url.Values{}
	for _, id := range entityIDs {
		q.Add("signal.interests.entities", id)
	}
	q.Add("filter.audience.types", "urn:audience:communities")
	q.Add("filter.audience.types", "urn:audience:lifestyle_preferences_beliefs")
	q.Set("include.popularity", "true")
	q.Set("include.tags", "true")
	q.Set("include.metrics", "all")
	q.Set("take", "20")
	q.Set("bias.trends", WeightMedium)
	if location != "" {
		q.Set("signal.location", location)
		q.Set("signal.location.weight", WeightHigh)
		q.Set("signal.location.radius", "50000")
	}

	var resp struct {
		Results struct {
			Entities []Entity `json:"entities"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, insightsPath, q, &resp); err != nil {
		log.Warn().Err(err).Strs("entityIds", entityIDs).Msg("Qloo cultural insights failed")
		return MockCulturalInsights()
	}

	entities := resp.Results.Entities
	if entities == nil {
		entities = []Entity{}
	}
	return CulturalInsights{
		Entities:        entities,
		Tags:            uniqueTagNames(entities, 15),
		Audiences:       []Audience{},
		CulturalDomains: culturalDomains(entities),
		Confidence:      0.8,
	}
}

// BrandInsights resolves each brand name to its best Qloo match near
// location and returns cultural insights for the matches. Names with no
// match are skipped; when none match the canned profile is returned.
func (c *Client) BrandInsights(ctx context.Context, brands []string, location string) CulturalInsights {
	ids := make([]string, 0, len(brands))
	for _, name := range brands {
		if id := c.resolve(ctx, name, location); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		log.Debug().Strs("brands", brands).Msg("No Qloo entity for brand insights")
	}
	return c.Insights(ctx, ids, location)
}

// resolve returns the entity ID of the top search match for name, or "".
func (c *Client) resolve(ctx context.Context, name, location string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	entities := c.Search(ctx, name, SearchOptions{Limit: 1, Location: location})
	if len(entities) == 0 {
		return ""
	}
	return entities[0].EntityID
}

// Audience is a Qloo audience segment with its match score.
type Audience struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Match       float64 `json:"match"`
}

// Audiences returns person audiences matching entityIDs near location. On
// failure a canned audience list is returned.
func (c *Client) Audiences(ctx context.Context, entityIDs []string, location string) []Audience {
	q := url.Values{}
	q.Set("filter.parents.types", TypePerson)
	q.Set("take", "10")
	for _, id := range entityIDs {
		q.Add("signal.interests.entities", id)
	}
	if location != "" {
		q.Set("signal.location", location)
	}

	var resp struct {
		Results struct {
			Audiences []struct {
				ID          string       `json:"id"`
				Name        string       `json:"name"`
				Description string       `json:"description"`
				Query       *EntityQuery `json:"query"`
			} `json:"audiences"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/v2/audiences", q, &resp); err != nil {
		log.Warn().Err(err).Msg("Qloo audience analysis failed, using canned audiences")
		return MockAudiences()
	}

	out := make([]Audience, 0, len(resp.Results.Audiences))
	for _, a := range resp.Results.Audiences {
		aud := Audience{ID: a.ID, Name: a.Name, Description: a.Description}
		if a.Query != nil {
			aud.Match = a.Query.Affinity
		}
		out = append(out, aud)
	}
	return out
}

// Comparison describes taste overlap between two entities.
type Comparison struct {
	OverlapScore float64     `json:"overlapScore"`
	CommonTags   []string    `json:"commonTags"`
	Differences  Differences `json:"differences"`
	TotalTags    int         `json:"totalTags"`
	AvgAffinity  float64     `json:"avgAffinity"`
}

// Differences lists tags that lean toward one side of a comparison.
type Differences struct {
	Profile1Only []string `json:"profile1Only"`
	Profile2Only []string `json:"profile2Only"`
}

type compareTag struct {
	ID    string        `json:"tag_id"`
	Name  string        `json:"name"`
	Query *compareQuery `json:"query"`
}

// compareQuery holds the combined affinity plus each side's affinity.
type compareQuery struct {
	Affinity float64      `json:"affinity"`
	A        *EntityQuery `json:"a"`
	B        *EntityQuery `json:"b"`
}

func (t compareTag) label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Compare measures taste overlap between entity a and entity b. The overlap
// score is min(avgAffinity*200, 1). On failure, or when either side is
// empty, a canned comparison is returned.
func (c *Client) Compare(ctx context.Context, a, b string) Comparison {
	if a == "" || b == "" {
		return MockComparison()
	}
	q := url.Values{}
	q.Set("a.signal.interests.entities", a)
	q.Set("b.signal.interests.entities", b)
	q.Set("take", "20")

	var resp struct {
		Results struct {
			Tags []compareTag `json:"tags"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, "/v2/insights/compare", q, &resp); err != nil {
		log.Warn().Err(err).Str("a", a).Str("b", b).Msg("Qloo compare failed, using canned comparison")
		return MockComparison()
	}
	return summarizeComparison(resp.Results.Tags)
}

// CompareBrands resolves brand and competitor by name, preferring matches in
// location, and compares their taste profiles. It returns nil when either
// name has no Qloo entity.
func (c *Client) CompareBrands(ctx context.Context, brand, competitor, location string) *Comparison {
	a, b := c.resolve(ctx, brand, location), c.resolve(ctx, competitor, location)
	if a == "" || b == "" {
		log.Debug().Str("brand", brand).Str("competitor", competitor).Msg("No Qloo entity to compare")
		return nil
	}
	cmp := c.Compare(ctx, a, b)
	return &cmp
}

func summarizeComparison(tags []compareTag) Comparison {
	out := Comparison{
		CommonTags:  []string{},
		Differences: Differences{Profile1Only: []string{}, Profile2Only: []string{}},
		TotalTags:   len(tags),
	}
	if len(tags) == 0 {
		return out
	}

	var sum float64
	for _, t := range tags {
		if t.Query != nil {
			sum += t.Query.Affinity
		}
	}
	out.AvgAffinity = sum / float64(len(tags))
	out.OverlapScore = min(out.AvgAffinity*200, 1)

	for _, t := range tags {
		if t.Query == nil {
			continue
		}
		if t.Query.Affinity > 0.002 && len(out.CommonTags) < 10 {
			out.CommonTags = append(out.CommonTags, t.label())
		}
		if t.Query.A == nil || t.Query.B == nil {
			continue
		}
		switch {
		case t.Query.A.Affinity > t.Query.B.Affinity && len(out.Differences.Profile1Only) < 8:
			out.Differences.Profile1Only = append(out.Differences.Profile1Only, t.label())
		case t.Query.B.Affinity > t.Query.A.Affinity && len(out.Differences.Profile2Only) < 8:
			out.Differences.Profile2Only = append(out.Differences.Profile2Only, t.label())
		}
	}
	return out
}

// Geospatial returns popular places in location. On failure it retries once
// without the location filter; a final failure yields canned places.
func (c *Client) Geospatial(ctx context.Context, location string) []Entity {
	places, err := c.geospatial(ctx, location)
	if err == nil {
		return places
	}
	log.Warn().Err(err).Str("location", location).Msg("Qloo geospatial query failed")
	if location != "" {
		if places, err = c.geospatial(ctx, ""); err == nil {
			return places
		}
		log.Warn().Err(err).Msg("Qloo geospatial query failed without location")
	}
	return MockPlaces()
}

func (c *Client) geospatial(ctx context.Context, location string) ([]Entity, error) {
	q := url.Values{}
	q.Set("filter.type", TypePlace)
	q.Set("take", "5")
	q.Set("filter.popularity.min", "0.3")
	q.Set("feature.explainability", "true")
	if location != "" {
		q.Set("filter.location.query", location)
	}

	var resp struct {
		Results []Entity `json:"results"`
	}
	if err := c.getJSON(ctx, insightsPath, q, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []Entity{}, nil
	}
	return resp.Results, nil
}

// Ping checks connectivity with a small search followed by a trending call.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{"query": {"nike"}, "take": {"2"}}
	if _, err := c.do(ctx, http.MethodGet, "/search", q, nil); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	q = url.Values{"type": {TypeBrand}, "take": {"2"}, "period": {"weekly"}}
	if _, err := c.do(ctx, http.MethodGet, "/trends/category", q, nil); err != nil {
		return fmt.Errorf("trending: %w", err)
	}
	return nil
}

func addPopularity(q url.Values, minPop, maxPop float64) {
	if minPop > 0 {
		q.Set("filter.popularity.min", strconv.FormatFloat(minPop, 'f', -1, 64))
	}
	if maxPop > 0 && maxPop < 1 {
		q.Set("filter.popularity.max", strconv.FormatFloat(maxPop, 'f', -1, 64))
	}
}

func uniqueTagNames(entities []Entity, limit int) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range entities {
		for _, t := range e.Tags {
			name := t.Name
			if name == "" {
				name = t.ID
			}
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// culturalDomains collects the third URN segment of every tag type
// ("urn:tag:genre" -> "genre"), defaulting to "general".
func culturalDomains(entities []Entity) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range entities {
		for _, t := range e.Tags {
			domain := "general"
			if parts := strings.Split(t.Type, ":"); len(parts) > 2 && parts[2] != "" {
				domain = parts[2]
			}
			if !seen[domain] {
				seen[domain] = true
				out = append(out, domain)
			}
		}
	}
	return out
}
