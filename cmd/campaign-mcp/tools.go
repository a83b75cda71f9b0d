package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/pipeline"
	"github.com/fpang/campaign-intel/internal/planner"
	"github.com/fpang/campaign-intel/internal/qloo"
)

type campaignRunner interface {
	Run(ctx context.Context, in campaign.Input) (*pipeline.Report, error)
	Plan(ctx context.Context, in campaign.Input) (planner.Plan, error)
}

type contentWriter interface {
	GenerateContent(ctx context.Context, in campaign.Input, kind analysis.ContentKind) (string, error)
}

type cultureSource interface {
	CompareBrands(ctx context.Context, brand, competitor, location string) *qloo.Comparison
	Trending(ctx context.Context, entityType string, opts qloo.TrendingOptions) []qloo.Entity
	BrandInsights(ctx context.Context, brands []string, location string) qloo.CulturalInsights
}

// tools backs the MCP tool handlers.
type tools struct {
	runner  campaignRunner
	writer  contentWriter
	culture cultureSource
}

type briefArgs struct {
	BrandName       string `json:"brandName" jsonschema:"brand or company name"`
	Category        string `json:"category" jsonschema:"industry category, one of the listed categories"`
	ProductDetails  string `json:"productDetails" jsonschema:"what the campaign promotes"`
	Location        string `json:"location" jsonschema:"target city, region or country"`
	TargetScope     string `json:"targetScope" jsonschema:"campaign objective, one of the listed objectives"`
	Budget          string `json:"budget,omitempty" jsonschema:"budget range, one of the listed ranges"`
	AdditionalNotes string `json:"additionalNotes,omitempty" jsonschema:"anything else the analysis should consider"`
}

func (b briefArgs) input() campaign.Input {
	return campaign.Input{
		BrandName:       b.BrandName,
		Category:        campaign.Category(b.Category),
		ProductDetails:  b.ProductDetails,
		Location:        b.Location,
		TargetScope:     campaign.Scope(b.TargetScope),
		Budget:          campaign.Budget(b.Budget),
		AdditionalNotes: b.AdditionalNotes,
	}
}

type plannedQuery struct {
	EntityType  string `json:"entityType"`
	Description string `json:"description"`
	// Parameters is the Qloo parameter object as JSON.
	Parameters string `json:"parameters"`
}

type planOutput struct {
	Source  string         `json:"source"`
	Reason  string         `json:"reason,omitempty"`
	Queries []plannedQuery `json:"queries"`
}

func (t *tools) planQueries(ctx context.Context, _ *mcp.CallToolRequest, args briefArgs) (*mcp.CallToolResult, planOutput, error) {
	plan, err := t.runner.Plan(ctx, args.input())
	if err != nil {
		return nil, planOutput{}, err
	}
	out := planOutput{Source: plan.Source, Reason: plan.Reason, Queries: make([]plannedQuery, 0, len(plan.Descriptors))}
	for _, d := range plan.Descriptors {
		params, err := json.Marshal(d.Parameters)
		if err != nil {
			return nil, planOutput{}, fmt.Errorf("encode parameters for %q: %w", d.Description, err)
		}
		out.Queries = append(out.Queries, plannedQuery{
			EntityType:  d.EntityType,
			Description: d.Description,
			Parameters:  string(params),
		})
	}
	return nil, out, nil
}

type analysisOutput struct {
	ReportID         string   `json:"reportId"`
	ExecutiveSummary string   `json:"executiveSummary"`
	AnalysisSource   string   `json:"analysisSource"`
	QlooQueries      int      `json:"qlooQueries"`
	QlooSuccesses    int      `json:"qlooSuccesses"`
	KeyFindings      []string `json:"keyFindings"`
	Recommendations  []string `json:"recommendations"`
	ArchiveKey       string   `json:"archiveKey,omitempty"`
}

func (t *tools) analyzeCampaign(ctx context.Context, _ *mcp.CallToolRequest, args briefArgs) (*mcp.CallToolResult, analysisOutput, error) {
	report, err := t.runner.Run(ctx, args.input())
	if err != nil {
		return nil, analysisOutput{}, err
	}
	a := &report.Analysis.Analysis
	return nil, analysisOutput{
		ReportID:         report.ID,
		ExecutiveSummary: a.Overview.ExecutiveSummary,
		AnalysisSource:   report.Analysis.Source,
		QlooQueries:      len(report.Results),
		QlooSuccesses:    report.Successes(),
		KeyFindings:      nonNil(a.KeyFindings()),
		Recommendations:  nonNil(a.ImmediateRecommendations()),
		ArchiveKey:       report.ArchiveKey,
	}, nil
}

var contentKinds = []analysis.ContentKind{
	analysis.ContentPressRelease,
	analysis.ContentSocialMedia,
	analysis.ContentBlogPost,
}

type contentArgs struct {
	Brief briefArgs `json:"brief"`
	Kind  string    `json:"kind" jsonschema:"pressRelease, socialMedia or blogPost"`
}

type contentOutput struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func (t *tools) generateContent(ctx context.Context, _ *mcp.CallToolRequest, args contentArgs) (*mcp.CallToolResult, contentOutput, error) {
	kind := analysis.ContentKind(args.Kind)
	if !slices.Contains(contentKinds, kind) {
		return nil, contentOutput{}, fmt.Errorf("unknown content kind %q", args.Kind)
	}
	in := args.Brief.input()
	if err := in.Validate(); err != nil {
		return nil, contentOutput{}, err
	}
	text, err := t.writer.GenerateContent(ctx, in, kind)
	if err != nil {
		return nil, contentOutput{}, err
	}
	return nil, contentOutput{Kind: args.Kind, Text: text}, nil
}

type compareArgs struct {
	Brand      string `json:"brand" jsonschema:"the brand to compare"`
	Competitor string `json:"competitor" jsonschema:"the competing brand"`
	Location   string `json:"location,omitempty" jsonschema:"location preferred when resolving the names"`
}

type comparisonOutput struct {
	// Found is false when either name has no Qloo entity.
	Found        bool     `json:"found"`
	OverlapScore float64  `json:"overlapScore"`
	TotalTags    int      `json:"totalTags"`
	CommonTags   []string `json:"commonTags"`
	BrandOnly    []string `json:"brandOnly"`
	RivalOnly    []string `json:"competitorOnly"`
}

func (t *tools) compareBrands(ctx context.Context, _ *mcp.CallToolRequest, args compareArgs) (*mcp.CallToolResult, comparisonOutput, error) {
	if strings.TrimSpace(args.Brand) == "" || strings.TrimSpace(args.Competitor) == "" {
		return nil, comparisonOutput{}, fmt.Errorf("brand and competitor are required")
	}
	out := comparisonOutput{CommonTags: []string{}, BrandOnly: []string{}, RivalOnly: []string{}}
	c := t.culture.CompareBrands(ctx, args.Brand, args.Competitor, args.Location)
	if c == nil {
		return nil, out, nil
	}
	out.Found = true
	out.OverlapScore = c.OverlapScore
	out.TotalTags = c.TotalTags
	out.CommonTags = nonNil(c.CommonTags)
	out.BrandOnly = nonNil(c.Differences.Profile1Only)
	out.RivalOnly = nonNil(c.Differences.Profile2Only)
	return nil, out, nil
}

// maxTrending caps the limit argument of trending_entities.
const maxTrending = 50

type trendingArgs struct {
	Type     string `json:"type,omitempty" jsonschema:"Qloo entity type URN such as urn:entity:brand (the default) or urn:entity:artist"`
	Location string `json:"location,omitempty" jsonschema:"location filter"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of entities, 10 when unset"`
}

type trendingEntity struct {
	Name       string  `json:"name"`
	EntityID   string  `json:"entityId"`
	Popularity float64 `json:"popularity"`
	Place      string  `json:"place,omitempty"`
}

type trendingOutput struct {
	Type     string           `json:"type"`
	Entities []trendingEntity `json:"entities"`
}

func (t *tools) trendingEntities(ctx context.Context, _ *mcp.CallToolRequest, args trendingArgs) (*mcp.CallToolResult, trendingOutput, error) {
	if args.Limit < 0 {
		return nil, trendingOutput{}, fmt.Errorf("limit must be positive")
	}
	entityType := args.Type
	if entityType == "" {
		entityType = qloo.TypeBrand
	}
	limit := 10
	if args.Limit > 0 {
		limit = min(args.Limit, maxTrending)
	}
	entities := t.culture.Trending(ctx, entityType, qloo.TrendingOptions{Limit: limit, Location: args.Location})
	out := trendingOutput{Type: entityType, Entities: make([]trendingEntity, 0, len(entities))}
	for _, e := range entities {
		out.Entities = append(out.Entities, trendingEntity{
			Name:       e.Name,
			EntityID:   e.EntityID,
			Popularity: e.Popularity,
			Place:      e.Place(),
		})
	}
	return nil, out, nil
}

type insightsArgs struct {
	Brands   []string `json:"brands" jsonschema:"brand names to profile"`
	Location string   `json:"location,omitempty" jsonschema:"location to bias the profile toward"`
}

type insightsOutput struct {
	Tags            []string `json:"tags"`
	CulturalDomains []string `json:"culturalDomains"`
	Audiences       []string `json:"audiences"`
	RelatedEntities []string `json:"relatedEntities"`
	Confidence      float64  `json:"confidence"`
}

func (t *tools) culturalInsights(ctx context.Context, _ *mcp.CallToolRequest, args insightsArgs) (*mcp.CallToolResult, insightsOutput, error) {
	brands := make([]string, 0, len(args.Brands))
	for _, b := range args.Brands {
		if b = strings.TrimSpace(b); b != "" {
			brands = append(brands, b)
		}
	}
	if len(brands) == 0 {
		return nil, insightsOutput{}, fmt.Errorf("at least one brand is required")
	}
	in := t.culture.BrandInsights(ctx, brands, args.Location)
	out := insightsOutput{
		Tags:            nonNil(in.Tags),
		CulturalDomains: nonNil(in.CulturalDomains),
		Audiences:       make([]string, 0, len(in.Audiences)),
		RelatedEntities: make([]string, 0, len(in.Entities)),
		Confidence:      in.Confidence,
	}
	for _, a := range in.Audiences {
		out.Audiences = append(out.Audiences, a.Name)
	}
	for _, e := range in.Entities {
		out.RelatedEntities = append(out.RelatedEntities, e.Name)
	}
	return nil, out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, "; ")
}

// newServer registers the campaign tools on a new MCP server.
func newServer(t *tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "campaign-intel", Version: version}, nil)

	briefHelp := fmt.Sprintf("Categories: %s. Objectives: %s. Budgets: %s.",
		joinValues(campaign.Categories), joinValues(campaign.Scopes), joinValues(campaign.Budgets))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_queries",
		Description: "Plan the Qloo taste queries for a campaign brief without running them. " + briefHelp,
	}, t.planQueries)
	mcp.AddTool(server, &mcp.Tool{
		Name: "analyze_campaign",
		Description: "Run the full campaign analysis for a brief: plan and execute Qloo queries, " +
			"then summarize findings and recommendations. " + briefHelp,
	}, t.analyzeCampaign)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_content",
		Description: "Write a press release, social media plan or blog post for a campaign brief. " + briefHelp,
	}, t.generateContent)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_brands",
		Description: "Measure the Qloo taste overlap between a brand and a competitor.",
	}, t.compareBrands)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trending_entities",
		Description: "List this week's trending Qloo entities of one type, optionally near a location.",
	}, t.trendingEntities)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cultural_insights",
		Description: "Profile the cultural tastes around one or more brands: tags, domains, audiences and related entities.",
	}, t.culturalInsights)
	return server
}
