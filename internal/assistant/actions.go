package assistant

import (
	"strings"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/assets"
)

// Quick action IDs.
const (
	ActionPoster   = "poster"
	ActionScript   = "script"
	ActionTheme    = "theme"
	ActionContent  = "content"
	ActionStrategy = "strategy"
	ActionIdeas    = "ideas"
)

// Action is a quick-action template. Selecting one starts a two-turn flow:
// the assistant asks for preferences, and the next message the user sends
// is used as those preferences in a deliverable-specific prompt.
type Action struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Description is the one-line button caption.
	Description string `json:"description"`
	// Prompt is sent as the request when there is no analysis context.
	Prompt string `json:"-"`

	subject   string
	lead      string
	questions []string
	section   func(a *analysis.CampaignAnalysis) (title string, v any)
	// deliverables lists what the model must produce.
	deliverables string
}

var actions = []Action{
	{
		ID:          ActionPoster,
		Title:       "Posters",
		Description: "Create visual posters for your campaign",
		Prompt: "Generate creative poster designs for my PR campaign. Include visual concepts, " +
			"color schemes, and layout ideas that would work well for my campaign type.",
		subject: "poster designs",
		lead:    "Perfect!",
		questions: []string{
			"**Visual Style**: Modern/minimal, bold/colorful, professional/corporate, creative/artistic?",
			"**Color Palette**: Any specific colors or brand guidelines to follow?",
			"**Messaging Focus**: Primary message or call-to-action you want to emphasize?",
			"**Format**: Digital only, print-ready, or both?",
			"**Tone**: Serious/professional, fun/engaging, inspirational, or urgent?",
		},
		section: func(a *analysis.CampaignAnalysis) (string, any) {
			return "QLOO LOCATION ANALYSIS", a.QlooInsights.LocationAnalysis
		},
		deliverables: `Generate 3-5 specific poster concepts. For each, describe the layout, colors, typography, visual elements and messaging.`,
	},
	{
		ID:          ActionScript,
		Title:       "Scripts",
		Description: "Create video and audio scripts",
		Prompt: "Generate compelling video and audio scripts for my PR campaign. Include different " +
			"formats like TV ads, social media videos, and podcast content.",
		subject: "video and audio scripts",
		lead:    "Excellent!",
		questions: []string{
			"**Format Priority**: TV commercial, social media video, podcast, radio, or all?",
			"**Duration**: Short (15-30s), medium (30-60s), or long (60s+)?",
			"**Tone**: Professional, conversational, humorous, emotional, or inspirational?",
			"**Call-to-Action**: What specific action do you want viewers/listeners to take?",
			"**Platform Focus**: Any specific platforms or channels?",
		},
		section: func(a *analysis.CampaignAnalysis) (string, any) {
			return "QLOO CONTENT STRATEGY", a.Strategy.ContentStrategy
		},
		deliverables: `Generate these script formats:
1. 30-second TV commercial script
2. 60-second social media video script
3. 2-minute podcast segment script
4. Radio advertisement script

Provide complete scripts with dialogue, stage directions, and timing.`,
	},
	{
		ID:          ActionTheme,
		Title:       "Theme",
		Description: "Create campaign theme and messaging",
		Prompt: "Generate a comprehensive campaign theme and messaging strategy. Include taglines, " +
			"key messages, tone of voice, and brand positioning.",
		subject: "campaign theme and messaging strategy",
		lead:    "Great!",
		questions: []string{
			"**Brand Voice**: Professional, friendly, authoritative, innovative, or trustworthy?",
			"**Emotional Appeal**: What emotion do you want to evoke (trust, excitement, urgency, etc.)?",
			"**Key Message**: Any specific message or value proposition to emphasize?",
			"**Differentiation**: What makes your campaign unique?",
			"**Tone**: Serious, lighthearted, inspirational, or urgent?",
		},
		section: func(a *analysis.CampaignAnalysis) (string, any) {
			return "QLOO STRATEGY DATA", a.Strategy
		},
		deliverables: `Generate a comprehensive theme strategy including:
1. Main Campaign Tagline (3-5 options)
2. Key Messages (5-7 specific messages)
3. Tone of Voice Guidelines
4. Brand Positioning Statement
5. Visual Identity Guidelines
6. Messaging Hierarchy

Explain how each element connects to the analysis data.`,
	},
	{
		ID:          ActionContent,
		Title:       "Content",
		Description: "Create social media and blog content",
		Prompt: "Generate engaging social media posts, blog content, and press releases for my PR " +
			"campaign. Include different content types and posting schedules.",
		subject: "social media and blog content",
		lead:    "Perfect!",
		questions: []string{
			"**Platform Focus**: Instagram, LinkedIn, Twitter, Facebook, or all?",
			"**Content Type**: Educational, entertaining, promotional, or storytelling?",
			"**Posting Frequency**: Daily, weekly, or specific schedule?",
			"**Tone**: Professional, casual, humorous, or inspirational?",
			"**Hashtag Strategy**: Any specific hashtags or themes to include?",
		},
		section: func(a *analysis.CampaignAnalysis) (string, any) {
			return "QLOO CONTENT STRATEGY", a.Strategy.ContentStrategy
		},
		deliverables: `Generate specific content pieces:
1. 5 Social Media Posts (different platforms)
2. 1 Blog Post (500-800 words)
3. 1 Press Release
4. 3 Email Newsletter Templates
5. Content Calendar (2-week schedule)

Provide complete copy with hashtags, CTAs, and posting recommendations.`,
	},
	{
		ID:          ActionStrategy,
		Title:       "Strategy",
		Description: "Create detailed campaign strategy",
		Prompt: "Generate a comprehensive PR campaign strategy with detailed tactics, timeline, " +
			"budget allocation, and success metrics.",
		subject: "campaign strategy",
		lead:    "Excellent!",
		questions: []string{
			"**Focus Areas**: Digital marketing, traditional media, events, partnerships, or all?",
			"**Timeline**: Aggressive (quick launch) or gradual (phased approach)?",
			"**Budget Allocation**: Any specific channels or tactics to prioritize?",
			"**Success Metrics**: What's most important (awareness, engagement, conversions)?",
			"**Risk Tolerance**: Conservative or aggressive approach?",
		},
		section: func(a *analysis.CampaignAnalysis) (string, any) {
			return "IMPLEMENTATION DATA", a.Implementation
		},
		deliverables: `Generate a comprehensive strategy including:
1. Detailed Tactics (10-15 specific tactics)
2. Timeline with milestones
3. Budget allocation breakdown
4. Success metrics and KPIs
5. Risk management plan
6. Implementation roadmap`,
	},
	{
		ID:          ActionIdeas,
		Title:       "Ideas",
		Description: "Create creative campaign ideas",
		Prompt: "Generate innovative and creative campaign ideas that would make my PR campaign " +
			"stand out. Include viral concepts, partnerships, and unique approaches.",
		subject: "creative campaign ideas",
		lead:    "Great!",
		questions: []string{
			"**Idea Type**: Viral/social media, events, partnerships, technology, or influencer?",
			"**Budget Level**: Low-cost, medium, or high-budget ideas?",
			"**Timeline**: Quick wins, medium-term, or long-term concepts?",
			"**Risk Level**: Safe/conservative, moderate, or high-risk/high-reward?",
			"**Platform Focus**: Digital, offline, or integrated approaches?",
		},
		section: func(a *analysis.CampaignAnalysis) (string, any) {
			return "QLOO AUDIENCE DATA", a.Overview.TargetAudience
		},
		deliverables: `Generate 5-7 innovative campaign ideas including:
1. Viral/Shareable Concepts
2. Partnership Opportunities
3. Unique Event Ideas
4. Interactive Campaign Elements
5. Technology Integration Ideas
6. Influencer Collaboration Concepts

For each idea give the concept, implementation, expected outcomes, and budget considerations.`,
	},
}

// Actions returns the quick actions in display order.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

func lookupAction(id string) (Action, bool) {
	for _, a := range actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// userLine is what the transcript records when the action is selected.
func (a Action) userLine() string {
	return "Generate " + strings.ToLower(a.Title) + " for my campaign"
}

// question is the first-turn reply asking for preferences.
func (a Action) question(c *Context) string {
	if !c.HasData() {
		return "I'd be happy to help you generate " + strings.ToLower(a.Title) + "!\n\n" +
			"Do you have any specific preferences for:\n" +
			"• Style or tone you'd like to use?\n" +
			"• Target audience focus?\n" +
			"• Budget considerations?\n" +
			"• Timeline requirements?\n\n" +
			"Or would you like me to generate based on general best practices?"
	}

	in := c.Input
	var b strings.Builder
	b.WriteString(a.lead + " I have your complete " + string(in.TargetScope) +
		" analysis data for " + in.BrandName + " targeting " + in.Location + ".\n\n")
	b.WriteString("For your " + a.subject + " targeting " + c.audience() + " in " + in.Location +
		" with a " + c.budget() + " budget, do you have any specific preferences for:\n\n")
	for _, q := range a.questions {
		b.WriteString("• " + q + "\n")
	}
	b.WriteString("• **Location-Specific Elements**: Any local cultural elements from " + in.Location + " to incorporate?\n\n")
	b.WriteString("Or would you like me to generate based on your Qloo cultural insights and analytics data for " + in.Location + "?")
	return b.String()
}

// prompt builds the second-turn request embedding the user's preferences.
// Without analysis context the action's base prompt goes through the general
// guidance template instead.
func (a Action) prompt(c *Context, preference string) string {
	if !c.HasData() {
		request := a.Prompt
		if preference != "" {
			request += " Preferences: " + preference
		}
		return assets.RenderGeneralPrompt(assets.GeneralData{Request: request})
	}

	d := assets.QuickActionData{
		Campaign:        c.Input.PromptData(),
		Subject:         a.subject,
		Preference:      preference,
		KeyFindings:     c.Analysis.KeyFindings(),
		Recommendations: c.Analysis.ImmediateRecommendations(),
		AnalyticsJSON:   c.analyticsJSON(),
		Deliverables:    a.deliverables,
	}
	if a.section != nil {
		title, v := a.section(c.Analysis)
		d.SectionTitle = title
		d.SectionJSON = indentJSON(v)
	}
	return assets.RenderQuickActionPrompt(d)
}
