package analysis

// Fallback returns the generic placeholder analysis used when the model's
// answer cannot be used. Results carrying it have Source "fallback".
func Fallback() CampaignAnalysis {
	two := func(prefix string) []string { return []string{prefix + " 1", prefix + " 2"} }
	phase := func(duration string) Phase {
		return Phase{Duration: duration, Activities: two("Activity"), Deliverables: two("Deliverable")}
	}

	return CampaignAnalysis{
		Overview: Overview{
			ExecutiveSummary: "Analysis generated successfully",
			KeyObjectives:    two("Objective"),
			TargetAudience: TargetAudience{
				Primary:      "Primary audience",
				Secondary:    "Secondary audience",
				Demographics: "Demographic details",
			},
			UniqueValueProposition: "Unique value proposition",
		},
		Strategy: Strategy{
			MediaRelations: MediaRelations{
				KeyMessages:   two("Message"),
				StoryAngles:   two("Angle"),
				TargetMedia:   two("Media"),
				PitchStrategy: "Pitch strategy",
			},
			ContentStrategy: ContentStrategy{
				PressRelease: PressRelease{
					Headline:     "Press release headline",
					Subheadline:  "Subheadline",
					KeyPoints:    two("Point"),
					CallToAction: "Call to action",
				},
				SocialMedia: SocialMedia{
					Platforms:    two("Platform"),
					ContentTypes: two("Type"),
					Messaging:    "Social media strategy",
				},
				BlogContent: BlogContent{
					Topics:       two("Topic"),
					Tone:         "Content tone",
					Distribution: "Distribution strategy",
				},
			},
			CrisisManagement: CrisisManagement{
				PotentialRisks:   two("Risk"),
				ResponseStrategy: "Response strategy",
				Spokesperson:     "Spokesperson",
			},
		},
		Implementation: Implementation{
			Timeline: Timeline{
				Phase1: phase("2-3 weeks"),
				Phase2: phase("4-6 weeks"),
				Phase3: phase("2-4 weeks"),
			},
			BudgetAllocation: map[string]string{
				"mediaRelations":  "30%",
				"contentCreation": "25%",
				"socialMedia":     "20%",
				"events":          "15%",
				"measurement":     "10%",
			},
			TeamRequirements: TeamRequirements{
				Roles:            two("Role"),
				Responsibilities: "Team responsibilities",
				ExternalPartners: "External partners",
			},
		},
		Measurement: Measurement{
			KPIs: KPIs{
				Awareness:  two("KPI"),
				Engagement: two("KPI"),
				Conversion: two("KPI"),
			},
			Tools:             two("Tool"),
			ReportingSchedule: "Reporting schedule",
		},
		Recommendations: Recommendations{
			Immediate:     two("Recommendation"),
			ShortTerm:     two("Recommendation"),
			LongTerm:      two("Recommendation"),
			Risks:         two("Risk"),
			Opportunities: two("Opportunity"),
		},
	}
}

// example is the illustrated answer shown to the model. Strings describe what
// each field should hold for the campaign location.
func example(location string) CampaignAnalysis {
	for3 := func(what string) []string {
		return []string{what + " 1 for " + location, what + " 2", what + " 3"}
	}
	phase := func(duration string) Phase {
		return Phase{
			Duration:           duration,
			Activities:         []string{"Activity 1", "Activity 2"},
			Deliverables:       []string{"Deliverable 1", "Deliverable 2"},
			CulturalMilestones: "Cultural milestones to achieve in " + location,
		}
	}

	return CampaignAnalysis{
		Overview: Overview{
			ExecutiveSummary: "Data-driven overview incorporating Qloo cultural insights for " + location,
			KeyObjectives:    for3("Objective based on cultural data"),
			TargetAudience: TargetAudience{
				Primary:             "Primary target audience based on Qloo demographic data for " + location,
				Secondary:           "Secondary target audience from cultural analysis for " + location,
				Demographics:        "Specific age, gender, location details from Qloo insights for " + location,
				CulturalPreferences: "Cultural preferences and behaviors identified from Qloo data for " + location,
			},
			UniqueValueProposition: "What makes this brand/product unique in the cultural context of " + location,
			CulturalInsights: CulturalInsights{
				KeyFindings:         for3("Cultural insight from Qloo data"),
				MarketOpportunities: for3("Opportunity"),
				CulturalChallenges:  for3("Challenge"),
			},
		},
		Strategy: Strategy{
			MediaRelations: MediaRelations{
				KeyMessages:       for3("Message aligned with cultural insights"),
				StoryAngles:       for3("Angle based on cultural trends"),
				TargetMedia:       for3("Media outlet from Qloo data"),
				PitchStrategy:     "How to approach media outlets using cultural intelligence for " + location,
				CulturalMessaging: "How to adapt messaging for cultural relevance in " + location,
			},
			ContentStrategy: ContentStrategy{
				PressRelease: PressRelease{
					Headline:         "Compelling headline incorporating cultural insights for " + location,
					Subheadline:      "Supporting subheadline with cultural context",
					KeyPoints:        for3("Point with cultural relevance"),
					CallToAction:     "What action should readers take",
					CulturalElements: "Cultural elements to include for " + location,
				},
				SocialMedia: SocialMedia{
					Platforms:          []string{"Platform 1 from Qloo insights", "Platform 2"},
					ContentTypes:       []string{"Type 1 culturally relevant for " + location, "Type 2"},
					Messaging:          "Social media messaging strategy for " + location,
					InfluencerStrategy: "Influencer approach based on Qloo data for " + location,
				},
				BlogContent: BlogContent{
					Topics:       for3("Topic with cultural relevance"),
					Tone:         "Content tone aligned with cultural preferences in " + location,
					Distribution: "How to distribute blog content",
				},
			},
			InfluencerStrategy: InfluencerStrategy{
				IdentifiedInfluencers: for3("Influencer from Qloo data"),
				PartnershipApproach:   "How to approach influencers based on cultural data",
				ContentCollaboration:  "Content collaboration ideas",
				EngagementStrategy:    "Engagement strategy for influencer partnerships",
			},
			VenueStrategy: VenueStrategy{
				IdentifiedVenues:         for3("Venue from Qloo data"),
				EventConcepts:            for3("Event concept"),
				CulturalAlignment:        "How venues align with cultural preferences in " + location,
				PartnershipOpportunities: "Partnership opportunities with venues",
			},
			CrisisManagement: CrisisManagement{
				PotentialRisks:         for3("Risk identified from cultural analysis"),
				ResponseStrategy:       "How to handle negative situations with cultural sensitivity",
				Spokesperson:           "Who should be the spokesperson",
				CulturalConsiderations: "Cultural considerations for crisis management in " + location,
			},
		},
		Implementation: Implementation{
			Timeline: Timeline{
				Phase1: phase("2-3 weeks"),
				Phase2: phase("4-6 weeks"),
				Phase3: phase("2-4 weeks"),
			},
			BudgetAllocation: map[string]string{
				"mediaRelations":       "30%",
				"contentCreation":      "25%",
				"socialMedia":          "20%",
				"events":               "15%",
				"measurement":          "10%",
				"culturalIntelligence": "Budget for ongoing cultural intelligence",
			},
			TeamRequirements: TeamRequirements{
				Roles:             []string{"Role 1", "Role 2", "Role 3"},
				Responsibilities:  "Who does what",
				ExternalPartners:  "Any external agencies needed",
				CulturalExpertise: "Cultural expertise requirements",
			},
		},
		Measurement: Measurement{
			KPIs: KPIs{
				Awareness:         []string{"KPI 1", "KPI 2"},
				Engagement:        []string{"KPI 1", "KPI 2"},
				Conversion:        []string{"KPI 1", "KPI 2"},
				CulturalRelevance: []string{"Cultural relevance KPI 1", "Cultural relevance KPI 2"},
			},
			Tools:             []string{"Tool 1", "Tool 2", "Tool 3"},
			ReportingSchedule: "How often to report results",
			CulturalMetrics:   "Metrics to track cultural impact",
		},
		Recommendations: Recommendations{
			Immediate:            []string{"Recommendation 1 based on cultural data for " + location, "Recommendation 2"},
			ShortTerm:            []string{"Recommendation 1", "Recommendation 2"},
			LongTerm:             []string{"Recommendation 1", "Recommendation 2"},
			Risks:                []string{"Risk 1 from cultural analysis", "Risk 2"},
			Opportunities:        []string{"Opportunity 1 from Qloo data", "Opportunity 2"},
			CulturalPartnerships: for3("Cultural partnership"),
		},
		QlooInsights: QlooInsights{
			KeyCulturalFindings: for3("Finding from Qloo data"),
			DemographicInsights: map[string]DemographicBand{
				"18-24": {Engagement: 85, Preferences: "Digital-first, social media savvy"},
				"25-34": {Engagement: 92, Preferences: "Value-driven, authenticity-focused"},
				"35-44": {Engagement: 78, Preferences: "Quality-conscious, family-oriented"},
				"45-54": {Engagement: 65, Preferences: "Trust-based, traditional media"},
				"55-64": {Engagement: 45, Preferences: "Stability-focused, word-of-mouth"},
				"65+":   {Engagement: 32, Preferences: "Traditional values, established brands"},
			},
			InfluencerOpportunities: []string{"Influencer opportunity 1 for " + location, "Influencer opportunity 2"},
			VenueRecommendations:    []string{"Venue recommendation 1 for " + location, "Venue recommendation 2"},
			TrendingTopics:          []string{"Trending topic 1 in " + location, "Trending topic 2"},
			CompetitiveLandscape:    "Competitive landscape insights from Qloo data for " + location,
			LocationAnalysis: LocationAnalysis{
				TopLocations: []TopLocation{{
					Name:             location,
					Score:            95,
					Reasoning:        "Based on Qloo cultural intelligence analysis for " + location,
					CulturalInsights: "Cultural factors identified from Qloo data for " + location,
					QlooData:         "Specific Qloo metrics and data points for " + location,
				}},
				CulturalMetrics: map[string]any{
					"totalPopulationReach":   "Calculated from Qloo data for " + location,
					"averageEngagementRate":  "Derived from Qloo popularity scores for " + location,
					"culturalRelevanceScore": "Based on Qloo cultural analysis for " + location,
					"influencerAffinity":     "Calculated from Qloo influencer data for " + location,
					"mediaCoveragePotential": "Assessed from Qloo media insights for " + location,
					"marketPenetration":      "Derived from Qloo market data for " + location,
				},
			},
		},
	}
}
