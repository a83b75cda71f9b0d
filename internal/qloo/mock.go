package qloo

// Canned responses returned by the helper endpoints when Qloo is unreachable.
// Each call returns a fresh copy.

func MockCulturalInsights() CulturalInsights {
	return CulturalInsights{
		Entities: []Entity{},
		Tags:     []string{"indie", "experimental", "nostalgic", "urban", "minimalist", "cultural-fusion"},
		Audiences: []Audience{
			{ID: "1", Name: "Creative Professionals", Match: 0.87},
			{ID: "2", Name: "Urban Explorers", Match: 0.82},
			{ID: "3", Name: "Cultural Enthusiasts", Match: 0.79},
		},
		CulturalDomains: []string{"music", "food", "travel", "art"},
		Confidence:      0.85,
	}
}

func MockAudiences() []Audience {
	return []Audience{
		{ID: "1", Name: "Creative Professionals", Match: 0.87, Description: "Artists, designers, and creative thinkers"},
		{ID: "2", Name: "Urban Explorers", Match: 0.82, Description: "City dwellers who love discovering new places"},
		{ID: "3", Name: "Cultural Enthusiasts", Match: 0.79, Description: "People passionate about arts and culture"},
		{ID: "4", Name: "Indie Music Lovers", Match: 0.75, Description: "Fans of independent and alternative music"},
		{ID: "5", Name: "Digital Natives", Match: 0.71, Description: "Tech-savvy millennials and Gen Z"},
	}
}

func MockComparison() Comparison {
	return Comparison{
		OverlapScore: 0.73,
		CommonTags:   []string{"indie", "urban", "contemporary"},
		Differences: Differences{
			Profile1Only: []string{"experimental", "minimalist"},
			Profile2Only: []string{"mainstream", "classical"},
		},
		TotalTags:   45,
		AvgAffinity: 0.00365,
	}
}

func MockPlaces() []Entity {
	return []Entity{
		{
			Name:       "Central Park",
			EntityID:   "central-park",
			Type:       TypePlace,
			Popularity: 0.92,
			Properties: map[string]any{
				"image": map[string]any{"url": "https://images.pexels.com/photos/378570/pexels-photo-378570.jpeg"},
			},
			Query: &EntityQuery{Affinity: 0.85},
		},
		{
			Name:       "Times Square",
			EntityID:   "times-square",
			Type:       TypePlace,
			Popularity: 0.89,
			Properties: map[string]any{
				"image": map[string]any{"url": "https://images.pexels.com/photos/290386/pexels-photo-290386.jpeg"},
			},
			Query: &EntityQuery{Affinity: 0.82},
		},
	}
}
