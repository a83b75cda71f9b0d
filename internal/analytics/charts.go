package analytics

import (
	"math"
	"sort"
	"strconv"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/qloo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Charts are derived without the model from the executed results and the
// analysis. A nil field means there was no real data to chart.
type Charts struct {
	AgeDemographics       *Dataset               `json:"ageDemographics,omitempty"`
	BrandLikingPool       *Dataset               `json:"brandLikingPool,omitempty"`
	PopulationInvolvement *Dataset               `json:"populationInvolvement,omitempty"`
	CulturalRelevance     *Dataset               `json:"culturalRelevance,omitempty"`
	TopLocations          []analysis.TopLocation `json:"topLocations,omitempty"`
	KeyMetrics            *KeyMetrics            `json:"keyMetrics,omitempty"`
}

// KeyMetrics are headline figures. Empty fields had no supporting data.
type KeyMetrics struct {
	TotalPopulationReach   string `json:"totalPopulationReach,omitempty"`
	AverageEngagementRate  string `json:"averageEngagementRate,omitempty"`
	CulturalRelevanceScore string `json:"culturalRelevanceScore,omitempty"`
	InfluencerAffinity     string `json:"influencerAffinity,omitempty"`
	MediaCoveragePotential string `json:"mediaCoveragePotential,omitempty"`
	MarketPenetration      string `json:"marketPenetration,omitempty"`
}

var (
	affinityLabels  = []string{"High Affinity", "Medium Affinity", "Low Affinity", "Neutral", "Negative"}
	months          = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	relevanceLabels = []string{"Brand Awareness", "Cultural Alignment", "Market Penetration", "Influencer Reach", "Media Coverage"}
)

const (
	defaultBandEngagement = 70
	maxTopLocations       = 5
	minLocationScore      = 75
)

// DeriveCharts computes every chart. a may be nil when no analysis exists.
func DeriveCharts(results []qloo.Result, a *analysis.CampaignAnalysis) Charts {
	var insights analysis.QlooInsights
	if a != nil {
		insights = a.QlooInsights
	}
	return Charts{
		AgeDemographics:       ageDemographics(insights),
		BrandLikingPool:       brandLikingPool(results),
		PopulationInvolvement: populationInvolvement(insights),
		CulturalRelevance:     culturalRelevance(insights),
		TopLocations:          topLocations(results),
		KeyMetrics:            keyMetrics(results, insights),
	}
}

// ageDemographics charts engagement per age band. Bands the model did not
// score default to 70.
func ageDemographics(q analysis.QlooInsights) *Dataset {
	if len(q.DemographicInsights) == 0 {
		return nil
	}
	data := make([]float64, len(analysis.AgeBands))
	for i, band := range analysis.AgeBands {
		data[i] = defaultBandEngagement
		if b, ok := q.DemographicInsights[band]; ok && b.Engagement > 0 {
			data[i] = b.Engagement
		}
	}
	return &Dataset{
		Labels: analysis.AgeBands,
		Series: []Series{{
			Label:           "Brand Engagement by Age",
			Data:            data,
			BackgroundColor: fills(palette, 0.8),
			BorderColor:     fills(palette, 1),
		}},
	}
}

// brandLikingPool buckets every positive result popularity into five
// affinity bands and reports each band's share as a rounded percentage.
func brandLikingPool(results []qloo.Result) *Dataset {
	var pops []float64
	for _, r := range results {
		for _, e := range r.Entities() {
			if e.Popularity > 0 {
				pops = append(pops, e.Popularity)
			}
		}
	}
	if len(pops) == 0 {
		return nil
	}

	counts := make([]float64, len(affinityLabels))
	for _, p := range pops {
		switch {
		case p >= 0.8:
			counts[0]++
		case p >= 0.6:
			counts[1]++
		case p >= 0.4:
			counts[2]++
		case p >= 0.2:
			counts[3]++
		default:
			counts[4]++
		}
	}
	for i := range counts {
		counts[i] = math.Round(counts[i] / float64(len(pops)) * 100)
	}
	return &Dataset{
		Labels: affinityLabels,
		Series: []Series{{
			Data:            counts,
			BackgroundColor: fills(affinityPalette, 0.8),
			BorderColor:     fills(affinityPalette, 1),
		}},
	}
}

// populationInvolvement is a 12-month engagement trend clamped to 60..95.
func populationInvolvement(q analysis.QlooInsights) *Dataset {
	trends := len(q.TrendingTopics)
	findings := len(q.KeyCulturalFindings)
	if trends == 0 && findings == 0 {
		return nil
	}

	base := 65.0
	if findings > 0 {
		base = 70
	}
	data := make([]float64, len(months))
	for i := range months {
		v := base + float64(i)*2
		if trends > 0 {
			v = float64(trends)*2 + float64(i)*1.5
		}
		data[i] = math.Min(math.Max(v, 60), 95)
	}
	return &Dataset{
		Labels: months,
		Series: []Series{{
			Label:           "Brand Engagement Trend",
			Data:            data,
			BackgroundColor: Colors{blue.alpha(0.1)},
			BorderColor:     Colors{blue.alpha(1)},
		}},
	}
}

// culturalRelevance scores five metrics from the amount of supporting
// insight, capped at 95.
func culturalRelevance(q analysis.QlooInsights) *Dataset {
	findings := len(q.KeyCulturalFindings)
	influencers := len(q.InfluencerOpportunities)
	venues := len(q.VenueRecommendations)
	if findings == 0 && influencers == 0 && venues == 0 {
		return nil
	}

	data := make([]float64, len(relevanceLabels))
	for i := range relevanceLabels {
		score := 70 + findings*3 + influencers*2 + venues*2 + i*2
		data[i] = math.Min(float64(score), 95)
	}
	return &Dataset{
		Labels: relevanceLabels,
		Series: []Series{{
			Label:           "Cultural Relevance Score",
			Data:            data,
			BackgroundColor: Colors{purple.alpha(0.8)},
			BorderColor:     Colors{purple.alpha(1)},
		}},
	}
}

// topLocations ranks located entities by popularity + rating and keeps the
// top five.
func topLocations(results []qloo.Result) []analysis.TopLocation {
	type located struct {
		name       string
		popularity float64
		rating     float64
	}
	var all []located
	for _, r := range results {
		for _, e := range r.Entities() {
			if place := e.Place(); place != "" {
				all = append(all, located{name: place, popularity: e.Popularity, rating: e.Score()})
			}
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].popularity+all[i].rating > all[j].popularity+all[j].rating
	})
	if len(all) > maxTopLocations {
		all = all[:maxTopLocations]
	}

	p := message.NewPrinter(language.English)
	out := make([]analysis.TopLocation, len(all))
	for i, l := range all {
		strength := "cultural relevance"
		if l.popularity > 0.7 {
			strength = "popularity"
		}
		pct := math.Round(l.popularity * 100)
		out[i] = analysis.TopLocation{
			Name:             l.name,
			Score:            math.Max(math.Round((l.popularity+l.rating)*50), minLocationScore),
			Reasoning:        "High " + strength + " based on Qloo venue analysis",
			CulturalInsights: p.Sprintf("Cultural alignment score: %.0f%% from Qloo data", pct),
			QlooData: p.Sprintf("Popularity: %.0f%%, Rating: %s/5, Cultural Index: %.0f/10",
				pct, strconv.FormatFloat(l.rating, 'f', -1, 64), math.Round(l.popularity*10)),
		}
	}
	return out
}

// keyMetrics summarises the run. Nil when nothing succeeded and the analysis
// has no findings.
func keyMetrics(results []qloo.Result, q analysis.QlooInsights) *KeyMetrics {
	succeeded, entities := 0, 0
	var popSum float64
	var popCount int
	for _, r := range results {
		if !r.Success {
			continue
		}
		succeeded++
		for _, e := range r.Entities() {
			entities++
			if e.Popularity > 0 {
				popSum += e.Popularity
				popCount++
			}
		}
	}
	findings := len(q.KeyCulturalFindings)
	influencers := len(q.InfluencerOpportunities)
	if succeeded == 0 && findings == 0 {
		return nil
	}

	p := message.NewPrinter(language.English)
	m := &KeyMetrics{}
	if entities > 0 {
		m.TotalPopulationReach = p.Sprintf("%d", entities*1000)
	}
	if popCount > 0 {
		m.AverageEngagementRate = p.Sprintf("%.0f%%", math.Round(popSum/float64(popCount)*100))
	}
	if findings > 0 {
		score := min(findings*10+len(q.DemographicInsights)*5+influencers*3, 100)
		m.CulturalRelevanceScore = p.Sprintf("%d/100", score)
		m.MediaCoveragePotential = "Medium"
		if findings > 3 {
			m.MediaCoveragePotential = "High"
		}
	}
	if influencers > 0 {
		m.InfluencerAffinity = p.Sprintf("%d%%", min(influencers*15, 95))
	}
	if succeeded > 0 {
		m.MarketPenetration = p.Sprintf("%d%%", min(succeeded*15, 85))
	}
	return m
}
