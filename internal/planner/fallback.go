package planner

import (
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/qloo"
)

// Analytical categories every plan covers. Descriptions start with one of
// these followed by ": ".
const (
	CategoryBrandAnalysis        = "BRAND ANALYSIS"
	CategoryCompetitiveIntel     = "COMPETITIVE INTELLIGENCE"
	CategoryGeographicIntel      = "GEOGRAPHIC INTELLIGENCE"
	CategoryDemographicAnalysis  = "DEMOGRAPHIC ANALYSIS"
	CategoryInfluencerDiscovery  = "INFLUENCER DISCOVERY"
	CategoryVenueMediaDiscovery  = "VENUE & MEDIA OUTLET DISCOVERY"
	CategoryCulturalPartnerships = "CULTURAL PARTNERSHIPS"
	CategoryTrendingAnalysis     = "TRENDING ANALYSIS"
	CategoryContentIntelligence  = "CONTENT INTELLIGENCE"
	CategoryCrisisManagement     = "CRISIS MANAGEMENT"
)

// Parameter keys used by the fallback plan.
const (
	filterTypeKey          = "filter.type"
	takeKey                = "take"
	resultsQueryKey        = "filter.results.entities.query"
	filterLocationQueryKey = "filter.location.query"
	popularityMinKey       = "filter.popularity.min"
	popularityMaxKey       = "filter.popularity.max"
	ratingMinKey           = "filter.rating.min"
	locationQueryKey       = "signal.location.query"
	interestsQueryKey      = "signal.interests.entities.query"
	demographicsAgeKey     = "signal.demographics.age"
	demographicsGenderKey  = "signal.demographics.gender"
	biasTrendsKey          = "bias.trends"
)

const (
	defaultTake            = 10
	highPopularity         = 0.8
	establishedPopularity  = 0.7
	contentPopularity      = 0.6
	emergingPopularityMin  = 0.4
	emergingPopularityMax  = 0.7
	minVenueRating         = 4.0
	youngInfluencerAge     = "25_to_35"
	femaleInfluencerGender = "female"
	trendingBias           = qloo.WeightHigh
)

// Categories lists the ten analytical categories in plan order.
var Categories = []string{
	CategoryBrandAnalysis,
	CategoryCompetitiveIntel,
	CategoryGeographicIntel,
	CategoryDemographicAnalysis,
	CategoryInfluencerDiscovery,
	CategoryVenueMediaDiscovery,
	CategoryCulturalPartnerships,
	CategoryTrendingAnalysis,
	CategoryContentIntelligence,
	CategoryCrisisManagement,
}

// Fallback returns the deterministic plan used whenever the LLM plan cannot
// be obtained: 18 descriptors covering all ten categories, localised to the
// campaign location and anchored on the brand.
func Fallback(in campaign.Input) []qloo.Descriptor {
	brand := in.BrandName
	loc := in.Location
	scope := string(in.TargetScope)
	brands := func() []any { return []any{brand} }

	d := func(entityType, category, text string, params map[string]any) qloo.Descriptor {
		params[filterTypeKey] = entityType
		params[takeKey] = defaultTake
		return qloo.Descriptor{
			EntityType:  entityType,
			Description: category + ": " + text,
			Parameters:  params,
		}
	}

	return []qloo.Descriptor{
		d(qloo.TypeBrand, CategoryBrandAnalysis,
			"Find specific information about "+brand+" for "+scope,
			map[string]any{resultsQueryKey: brands(), locationQueryKey: loc}),

		d(qloo.TypeBrand, CategoryCompetitiveIntel,
			"Find competing brands similar to "+brand+" in "+loc,
			map[string]any{locationQueryKey: loc, interestsQueryKey: brands()}),
		d(qloo.TypeBrand, CategoryCompetitiveIntel,
			"Find high-popularity brands in "+loc+" for "+scope,
			map[string]any{locationQueryKey: loc, popularityMinKey: highPopularity}),

		d(qloo.TypeDestination, CategoryGeographicIntel,
			"Find cultural insights for "+loc+" market",
			map[string]any{locationQueryKey: loc, interestsQueryKey: brands()}),

		d(qloo.TypePerson, CategoryDemographicAnalysis,
			"Find young influencers (25-35) in "+loc+" for "+brand,
			map[string]any{locationQueryKey: loc, demographicsAgeKey: youngInfluencerAge, interestsQueryKey: brands()}),
		d(qloo.TypePerson, CategoryDemographicAnalysis,
			"Find female influencers in "+loc+" for "+brand,
			map[string]any{locationQueryKey: loc, demographicsGenderKey: femaleInfluencerGender, interestsQueryKey: brands()}),

		d(qloo.TypePerson, CategoryInfluencerDiscovery,
			"Find high-profile influencers in "+loc+" for "+brand,
			map[string]any{locationQueryKey: loc, interestsQueryKey: brands(), popularityMinKey: highPopularity}),
		d(qloo.TypePerson, CategoryInfluencerDiscovery,
			"Find emerging influencers in "+loc+" for "+brand,
			map[string]any{locationQueryKey: loc, interestsQueryKey: brands(), popularityMinKey: emergingPopularityMin, popularityMaxKey: emergingPopularityMax}),

		d(qloo.TypePlace, CategoryVenueMediaDiscovery,
			"Find high-quality venues in "+loc+" for "+brand,
			map[string]any{filterLocationQueryKey: loc, ratingMinKey: minVenueRating, popularityMinKey: establishedPopularity}),
		d(qloo.TypePlace, CategoryVenueMediaDiscovery,
			"Find media outlets and press venues in "+loc,
			map[string]any{filterLocationQueryKey: loc, ratingMinKey: minVenueRating}),

		d(qloo.TypeArtist, CategoryCulturalPartnerships,
			"Find trending artists aligned with "+brand+" in "+loc,
			map[string]any{interestsQueryKey: brands(), locationQueryKey: loc, biasTrendsKey: trendingBias}),
		d(qloo.TypeArtist, CategoryCulturalPartnerships,
			"Find established artists in "+loc+" for "+brand,
			map[string]any{locationQueryKey: loc, popularityMinKey: establishedPopularity}),

		d(qloo.TypeBrand, CategoryTrendingAnalysis,
			"Find trending brands in "+loc+" for "+brand+" to monitor",
			map[string]any{locationQueryKey: loc, biasTrendsKey: trendingBias}),

		d(qloo.TypeMovie, CategoryContentIntelligence,
			"Find movies relevant to "+brand+" target audience",
			map[string]any{interestsQueryKey: brands(), popularityMinKey: contentPopularity}),
		d(qloo.TypeTVShow, CategoryContentIntelligence,
			"Find TV shows relevant to "+brand+" target audience",
			map[string]any{interestsQueryKey: brands(), popularityMinKey: contentPopularity}),
		d(qloo.TypePodcast, CategoryContentIntelligence,
			"Find podcasts relevant to "+brand+" industry",
			map[string]any{interestsQueryKey: brands()}),

		d(qloo.TypePerson, CategoryCrisisManagement,
			"Find crisis communication experts in "+loc+" for "+brand,
			map[string]any{locationQueryKey: loc, popularityMinKey: establishedPopularity}),
		d(qloo.TypeBrand, CategoryCrisisManagement,
			"Find brands with similar risk profiles to "+brand+" in "+loc,
			map[string]any{locationQueryKey: loc, interestsQueryKey: brands()}),
	}
}
