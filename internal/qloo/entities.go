package qloo

import "encoding/json"

// Entity type URNs accepted by filter.type.
const (
	TypeArtist      = "urn:entity:artist"
	TypeBook        = "urn:entity:book"
	TypeBrand       = "urn:entity:brand"
	TypeDestination = "urn:entity:destination"
	TypeMovie       = "urn:entity:movie"
	TypePerson      = "urn:entity:person"
	TypePlace       = "urn:entity:place"
	TypePodcast     = "urn:entity:podcast"
	TypeTVShow      = "urn:entity:tv_show"
	TypeVideoGame   = "urn:entity:videogame"

	// TypeHeatmap is an output type, not an entity.
	TypeHeatmap = "urn:heatmap"
)

// EntityTypes lists every supported entity URN in the order prompts show them.
var EntityTypes = []string{
	TypeArtist, TypeBook, TypeBrand, TypeDestination, TypeMovie,
	TypePerson, TypePlace, TypePodcast, TypeTVShow, TypeVideoGame,
}

// IsEntityType reports whether s is a supported entity URN.
func IsEntityType(s string) bool {
	for _, t := range EntityTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Signal weights for signal.* and bias.* parameters.
const (
	WeightVeryLow  = "very_low"
	WeightLow      = "low"
	WeightMid      = "mid"
	WeightMedium   = "medium"
	WeightHigh     = "high"
	WeightVeryHigh = "very_high"
)

// Descriptor is one planned Qloo query. Parameters holds flat, dotted keys
// (e.g. "signal.location.query") mapped to scalars or arrays.
type Descriptor struct {
	EntityType  string         `json:"entityType"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Result is the outcome of executing one Descriptor. Exactly one of Data
// (on success) or Error (on failure) is meaningful.
type Result struct {
	Query   Descriptor      `json:"query"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Entity is the subset of a Qloo entity used by chart derivation and the
// helper endpoints.
type Entity struct {
	Name       string         `json:"name"`
	EntityID   string         `json:"entity_id"`
	Type       string         `json:"type,omitempty"`
	Subtype    string         `json:"subtype,omitempty"`
	Popularity float64        `json:"popularity"`
	Rating     float64        `json:"rating,omitempty"`
	Location   any            `json:"location,omitempty"`
	Address    string         `json:"address,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Query      *EntityQuery   `json:"query,omitempty"`
	Tags       []Tag          `json:"tags,omitempty"`
}

// EntityQuery carries query-relative scores.
type EntityQuery struct {
	Affinity float64 `json:"affinity"`
}

// Tag is a Qloo taste tag.
type Tag struct {
	ID    string       `json:"id,omitempty"`
	TagID string       `json:"tag_id,omitempty"`
	Name  string       `json:"name"`
	Type  string       `json:"type,omitempty"`
	Query *EntityQuery `json:"query,omitempty"`
}

// Entities returns the entities carried in a successful result's payload.
// Both {"results":{"entities":[...]}} and {"results":[...]} shapes are
// accepted; anything else yields nil.
func (r Result) Entities() []Entity {
	if !r.Success || len(r.Data) == 0 {
		return nil
	}
	var nested struct {
		Results struct {
			Entities []Entity `json:"entities"`
		} `json:"results"`
	}
	if err := json.Unmarshal(r.Data, &nested); err == nil && len(nested.Results.Entities) > 0 {
		return nested.Results.Entities
	}
	var flat struct {
		Results []Entity `json:"results"`
	}
	if err := json.Unmarshal(r.Data, &flat); err == nil {
		return flat.Results
	}
	return nil
}

// Place returns a human-readable location for the entity: the location when
// it is a string, else the address, else properties.address. Empty when none
// is known.
func (e Entity) Place() string {
	if s, ok := e.Location.(string); ok && s != "" {
		return s
	}
	if e.Address != "" {
		return e.Address
	}
	if s, ok := e.Properties["address"].(string); ok {
		return s
	}
	return ""
}

// Score returns the rating, falling back to properties.business_rating.
func (e Entity) Score() float64 {
	if e.Rating > 0 {
		return e.Rating
	}
	if f, ok := e.Properties["business_rating"].(float64); ok {
		return f
	}
	return 0
}
