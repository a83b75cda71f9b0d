package analysis

// CampaignAnalysis is the structured campaign strategy produced by the model.
// The six top-level sections are required; everything below them is
// optional so partial but well-typed answers still validate.
type CampaignAnalysis struct {
	Overview        Overview        `json:"overview" jsonschema:"required"`
	Strategy        Strategy        `json:"strategy" jsonschema:"required"`
	Implementation  Implementation  `json:"implementation" jsonschema:"required"`
	Measurement     Measurement     `json:"measurement" jsonschema:"required"`
	Recommendations Recommendations `json:"recommendations" jsonschema:"required"`
	QlooInsights    QlooInsights    `json:"qlooInsights" jsonschema:"required"`
}

type Overview struct {
	ExecutiveSummary       string           `json:"executiveSummary,omitempty"`
	KeyObjectives          []string         `json:"keyObjectives,omitempty"`
	TargetAudience         TargetAudience   `json:"targetAudience"`
	UniqueValueProposition string           `json:"uniqueValueProposition,omitempty"`
	CulturalInsights       CulturalInsights `json:"culturalInsights"`
}

type TargetAudience struct {
	Primary             string `json:"primary,omitempty"`
	Secondary           string `json:"secondary,omitempty"`
	Demographics        string `json:"demographics,omitempty"`
	CulturalPreferences string `json:"culturalPreferences,omitempty"`
}

type CulturalInsights struct {
	KeyFindings         []string `json:"keyFindings,omitempty"`
	MarketOpportunities []string `json:"marketOpportunities,omitempty"`
	CulturalChallenges  []string `json:"culturalChallenges,omitempty"`
}

type Strategy struct {
	MediaRelations     MediaRelations     `json:"mediaRelations"`
	ContentStrategy    ContentStrategy    `json:"contentStrategy"`
	InfluencerStrategy InfluencerStrategy `json:"influencerStrategy"`
	VenueStrategy      VenueStrategy      `json:"venueStrategy"`
	CrisisManagement   CrisisManagement   `json:"crisisManagement"`
}

type MediaRelations struct {
	KeyMessages       []string `json:"keyMessages,omitempty"`
	StoryAngles       []string `json:"storyAngles,omitempty"`
	TargetMedia       []string `json:"targetMedia,omitempty"`
	PitchStrategy     string   `json:"pitchStrategy,omitempty"`
	CulturalMessaging string   `json:"culturalMessaging,omitempty"`
}

type ContentStrategy struct {
	PressRelease PressRelease `json:"pressRelease"`
	SocialMedia  SocialMedia  `json:"socialMedia"`
	BlogContent  BlogContent  `json:"blogContent"`
}

type PressRelease struct {
	Headline         string   `json:"headline,omitempty"`
	Subheadline      string   `json:"subheadline,omitempty"`
	KeyPoints        []string `json:"keyPoints,omitempty"`
	CallToAction     string   `json:"callToAction,omitempty"`
	CulturalElements string   `json:"culturalElements,omitempty"`
}

type SocialMedia struct {
	Platforms          []string `json:"platforms,omitempty"`
	ContentTypes       []string `json:"contentTypes,omitempty"`
	Messaging          string   `json:"messaging,omitempty"`
	InfluencerStrategy string   `json:"influencerStrategy,omitempty"`
}

type BlogContent struct {
	Topics       []string `json:"topics,omitempty"`
	Tone         string   `json:"tone,omitempty"`
	Distribution string   `json:"distribution,omitempty"`
}

type InfluencerStrategy struct {
	IdentifiedInfluencers []string `json:"identifiedInfluencers,omitempty"`
	PartnershipApproach   string   `json:"partnershipApproach,omitempty"`
	ContentCollaboration  string   `json:"contentCollaboration,omitempty"`
	EngagementStrategy    string   `json:"engagementStrategy,omitempty"`
}

type VenueStrategy struct {
	IdentifiedVenues         []string `json:"identifiedVenues,omitempty"`
	EventConcepts            []string `json:"eventConcepts,omitempty"`
	CulturalAlignment        string   `json:"culturalAlignment,omitempty"`
	PartnershipOpportunities string   `json:"partnershipOpportunities,omitempty"`
}

type CrisisManagement struct {
	PotentialRisks         []string `json:"potentialRisks,omitempty"`
	ResponseStrategy       string   `json:"responseStrategy,omitempty"`
	Spokesperson           string   `json:"spokesperson,omitempty"`
	CulturalConsiderations string   `json:"culturalConsiderations,omitempty"`
}

type Implementation struct {
	Timeline Timeline `json:"timeline"`
	// BudgetAllocation maps a budget line to its share, e.g. "mediaRelations": "30%".
	BudgetAllocation map[string]string `json:"budgetAllocation,omitempty"`
	TeamRequirements TeamRequirements  `json:"teamRequirements"`
}

type Timeline struct {
	Phase1 Phase `json:"phase1"`
	Phase2 Phase `json:"phase2"`
	Phase3 Phase `json:"phase3"`
}

type Phase struct {
	Duration           string   `json:"duration,omitempty"`
	Activities         []string `json:"activities,omitempty"`
	Deliverables       []string `json:"deliverables,omitempty"`
	CulturalMilestones string   `json:"culturalMilestones,omitempty"`
}

type TeamRequirements struct {
	Roles             []string `json:"roles,omitempty"`
	Responsibilities  string   `json:"responsibilities,omitempty"`
	ExternalPartners  string   `json:"externalPartners,omitempty"`
	CulturalExpertise string   `json:"culturalExpertise,omitempty"`
}

type Measurement struct {
	KPIs              KPIs     `json:"kpis"`
	Tools             []string `json:"tools,omitempty"`
	ReportingSchedule string   `json:"reportingSchedule,omitempty"`
	CulturalMetrics   string   `json:"culturalMetrics,omitempty"`
}

type KPIs struct {
	Awareness         []string `json:"awareness,omitempty"`
	Engagement        []string `json:"engagement,omitempty"`
	Conversion        []string `json:"conversion,omitempty"`
	CulturalRelevance []string `json:"culturalRelevance,omitempty"`
}

type Recommendations struct {
	Immediate            []string `json:"immediate,omitempty"`
	ShortTerm            []string `json:"shortTerm,omitempty"`
	LongTerm             []string `json:"longTerm,omitempty"`
	Risks                []string `json:"risks,omitempty"`
	Opportunities        []string `json:"opportunities,omitempty"`
	CulturalPartnerships []string `json:"culturalPartnerships,omitempty"`
}

// Age bands reported in QlooInsights.DemographicInsights, youngest first.
var AgeBands = []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

type QlooInsights struct {
	KeyCulturalFindings []string `json:"keyCulturalFindings,omitempty"`
	// DemographicInsights is keyed by age band (see AgeBands).
	DemographicInsights     map[string]DemographicBand `json:"demographicInsights,omitempty"`
	InfluencerOpportunities []string                   `json:"influencerOpportunities,omitempty"`
	VenueRecommendations    []string                   `json:"venueRecommendations,omitempty"`
	TrendingTopics          []string                   `json:"trendingTopics,omitempty"`
	CompetitiveLandscape    string                     `json:"competitiveLandscape,omitempty"`
	LocationAnalysis        LocationAnalysis           `json:"locationAnalysis"`
}

type DemographicBand struct {
	// Engagement is a 0-100 score.
	Engagement  float64 `json:"engagement" jsonschema:"minimum=0,maximum=100"`
	Preferences string  `json:"preferences,omitempty"`
}

type LocationAnalysis struct {
	TopLocations []TopLocation `json:"topLocations,omitempty"`
	// CulturalMetrics values are free-form; models return both numbers and prose.
	CulturalMetrics map[string]any `json:"culturalMetrics,omitempty"`
}

type TopLocation struct {
	Name             string  `json:"name"`
	Score            float64 `json:"score"`
	Reasoning        string  `json:"reasoning,omitempty"`
	CulturalInsights string  `json:"culturalInsights,omitempty"`
	QlooData         string  `json:"qlooData,omitempty"`
}

// KeyFindings returns the Qloo cultural findings, falling back to the
// overview's key findings when the model left the former empty.
func (a *CampaignAnalysis) KeyFindings() []string {
	if a == nil {
		return nil
	}
	if len(a.QlooInsights.KeyCulturalFindings) > 0 {
		return a.QlooInsights.KeyCulturalFindings
	}
	return a.Overview.CulturalInsights.KeyFindings
}

// ImmediateRecommendations returns the recommendations to act on first.
func (a *CampaignAnalysis) ImmediateRecommendations() []string {
	if a == nil {
		return nil
	}
	return a.Recommendations.Immediate
}
