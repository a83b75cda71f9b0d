// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time. campaign.txt defines the shared "campaign" block that every
// other template includes.
package assets

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// Pre-parsed templates. template.Must panics on malformed templates,
// catching errors at program startup rather than at call time.
var prompts = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "prompts/*.txt"),
)

// Campaign is the campaign block rendered into every prompt.
type Campaign struct {
	BrandName      string
	Category       string
	ProductDetails string
	Location       string
	TargetScope    string
	Budget         string
	Notes          string
	Attachments    int
}

// PlannerData feeds the query planner prompt.
type PlannerData struct {
	Campaign    Campaign
	EntityTypes []string
	Weights     []string
	// Example is the illustrated JSON array of descriptors.
	Example string
}

// AnalysisData feeds the campaign analysis prompt.
type AnalysisData struct {
	Campaign    Campaign
	QueriesJSON string
	ResultsJSON string
	Example     string
	Schema      string
}

// FacetData feeds one analytics facet prompt.
type FacetData struct {
	Campaign Campaign
	Title    string
	Focus    string
	DataJSON string
	Example  string
}

// AssistantData feeds the assistant prompt when analysis context exists.
// Recent holds pre-formatted "User: ..." / "Assistant: ..." lines.
type AssistantData struct {
	Campaign        Campaign
	Provider        string
	KeyFindings     []string
	Recommendations []string
	AnalysisJSON    string
	AnalyticsJSON   string
	Recent          []string
	Request         string
}

// GeneralData feeds the assistant prompt when no analysis exists yet.
type GeneralData struct {
	Recent  []string
	Request string
}

// QuickActionData feeds the facet-specific quick action prompt.
type QuickActionData struct {
	Campaign        Campaign
	Subject         string
	Preference      string
	KeyFindings     []string
	Recommendations []string
	SectionTitle    string
	SectionJSON     string
	AnalyticsJSON   string
	Deliverables    string
}

// ContentData feeds the content generator. Kind is pressRelease,
// socialMedia or blogPost; anything else yields a generic brief.
type ContentData struct {
	Campaign Campaign
	Kind     string
}

// CrisisData feeds the crisis response generator.
type CrisisData struct {
	Campaign Campaign
	Crisis   string
}

// CompetitorData feeds the competitor analysis generator. Comparison is an
// optional pre-rendered Qloo overlap summary.
type CompetitorData struct {
	Campaign    Campaign
	Competitors []string
	Comparison  string
}

func RenderPlannerPrompt(d PlannerData) string         { return render("query-planner.txt", d) }
func RenderAnalysisPrompt(d AnalysisData) string       { return render("campaign-analysis.txt", d) }
func RenderFacetPrompt(d FacetData) string             { return render("analytics-facet.txt", d) }
func RenderAssistantPrompt(d AssistantData) string     { return render("assistant-context.txt", d) }
func RenderGeneralPrompt(d GeneralData) string         { return render("assistant-general.txt", d) }
func RenderQuickActionPrompt(d QuickActionData) string { return render("quick-action.txt", d) }
func RenderContentPrompt(d ContentData) string         { return render("content.txt", d) }
func RenderCrisisPrompt(d CrisisData) string           { return render("crisis-response.txt", d) }
func RenderCompetitorPrompt(d CompetitorData) string   { return render("competitor-analysis.txt", d) }

// render executes a named template. Execution errors are not expected with
// these templates; if one happens it is logged and whatever was rendered is
// returned.
func render(name string, data any) string {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Prompt template execution failed")
	}
	return strings.TrimSpace(buf.String())
}
