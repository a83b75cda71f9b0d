package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/google/go-cmp/cmp"
)

func acme() campaign.Input {
	return campaign.Input{
		BrandName:      "Acme",
		Category:       "Technology",
		ProductDetails: "A smart home hub",
		Location:       "Berlin",
		TargetScope:    "Product Launch",
	}
}

func reply(text string, err error) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string) (string, error) { return text, err })
}

func TestFallback(t *testing.T) {
	got := Fallback(acme())
	if len(got) != 18 {
		t.Fatalf("len = %d, want 18", len(got))
	}

	perCategory := map[string]int{}
	for i, d := range got {
		if !qloo.IsEntityType(d.EntityType) {
			t.Errorf("[%d] entityType %q not supported", i, d.EntityType)
		}
		if d.Parameters["filter.type"] != d.EntityType {
			t.Errorf("[%d] filter.type = %v, want %s", i, d.Parameters["filter.type"], d.EntityType)
		}
		if d.Parameters["take"] != 10 {
			t.Errorf("[%d] take = %v", i, d.Parameters["take"])
		}
		if loc, ok := d.Parameters["signal.location.query"]; ok && loc != "Berlin" {
			t.Errorf("[%d] signal.location.query = %v", i, loc)
		}
		if loc, ok := d.Parameters["filter.location.query"]; ok && loc != "Berlin" {
			t.Errorf("[%d] filter.location.query = %v", i, loc)
		}
		if v, ok := d.Parameters["signal.interests.entities.query"]; ok {
			if diff := cmp.Diff([]any{"Acme"}, v); diff != "" {
				t.Errorf("[%d] interests mismatch:\n%s", i, diff)
			}
		}
		cat, _, found := strings.Cut(d.Description, ": ")
		if !found {
			t.Errorf("[%d] description %q has no category prefix", i, d.Description)
		}
		perCategory[cat]++
	}

	want := map[string]int{
		CategoryBrandAnalysis:        1,
		CategoryCompetitiveIntel:     2,
		CategoryGeographicIntel:      1,
		CategoryDemographicAnalysis:  2,
		CategoryInfluencerDiscovery:  2,
		CategoryVenueMediaDiscovery:  2,
		CategoryCulturalPartnerships: 2,
		CategoryTrendingAnalysis:     1,
		CategoryContentIntelligence:  3,
		CategoryCrisisManagement:     2,
	}
	if diff := cmp.Diff(want, perCategory); diff != "" {
		t.Errorf("category counts mismatch (-want +got):\n%s", diff)
	}
	if len(want) != len(Categories) {
		t.Errorf("Categories has %d entries, want %d", len(Categories), len(want))
	}
}

func TestFallback_BrandAnalysisQuery(t *testing.T) {
	first := Fallback(acme())[0]
	want := qloo.Descriptor{
		EntityType:  qloo.TypeBrand,
		Description: "BRAND ANALYSIS: Find specific information about Acme for Product Launch",
		Parameters: map[string]any{
			"filter.type":                   qloo.TypeBrand,
			"filter.results.entities.query": []any{"Acme"},
			"signal.location.query":         "Berlin",
			"take":                          10,
		},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("first descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_UsesModelPlan(t *testing.T) {
	gen := reply("Here you go:\n```json\n"+`[
		{"entityType": "urn:entity:brand", "description": "BRAND ANALYSIS: Acme", "parameters": {"filter.type": "urn:entity:brand", "take": 5,}},
		{"entityType": "urn:entity:place", "description": "VENUE & MEDIA OUTLET DISCOVERY: Berlin", "parameters": {"filter.location.query": "Berlin"}}
	]`+"\n```", nil)

	plan := New(gen).Plan(context.Background(), acme())
	if plan.Fallback() {
		t.Fatalf("Plan() fell back: %s", plan.Reason)
	}
	if plan.Source != "stub" || plan.Reason != "" {
		t.Errorf("Source = %q, Reason = %q", plan.Source, plan.Reason)
	}
	if len(plan.Descriptors) != 2 || plan.Descriptors[1].EntityType != qloo.TypePlace {
		t.Errorf("Descriptors = %+v", plan.Descriptors)
	}
	if plan.Descriptors[0].Parameters["take"] != 5.0 {
		t.Errorf("take = %v", plan.Descriptors[0].Parameters["take"])
	}
}

func TestPlan_BareStringQueryPassesThrough(t *testing.T) {
	gen := reply(`[{"entityType":"urn:entity:brand","description":"x","parameters":{"signal.interests.entities.query":"Acme"}}]`, nil)

	plan := New(gen).Plan(context.Background(), acme())
	if plan.Fallback() {
		t.Fatalf("Plan() fell back: %s", plan.Reason)
	}
	if plan.Descriptors[0].Parameters["signal.interests.entities.query"] != "Acme" {
		t.Errorf("parameters = %v", plan.Descriptors[0].Parameters)
	}
}

func TestPlan_FallsBack(t *testing.T) {
	tests := []struct {
		name       string
		gen        llm.Generator
		wantReason string
	}{
		{"no generator", nil, "no language model configured"},
		{"model error", reply("", &llm.Error{Provider: "gemini", Kind: llm.KindQuota, Message: "quota exceeded"}), "quota"},
		{"no array", reply("I cannot help with that.", nil), "parse plan"},
		{"malformed", reply(`[{"entityType": "urn:entity:brand", "description": }]`, nil), "parse plan"},
		{"empty array", reply("[]", nil), errEmptyPlan.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := New(tt.gen).Plan(context.Background(), acme())
			if !plan.Fallback() {
				t.Fatalf("Source = %q, want fallback", plan.Source)
			}
			if !strings.Contains(plan.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", plan.Reason, tt.wantReason)
			}
			if diff := cmp.Diff(Fallback(acme()), plan.Descriptors); diff != "" {
				t.Errorf("fallback plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlan_ModelErrorBecomesReason(t *testing.T) {
	sentinel := errors.New("connection reset")
	plan := New(reply("", sentinel)).Plan(context.Background(), acme())
	if plan.Reason != "connection reset" {
		t.Errorf("Reason = %q", plan.Reason)
	}
}

func TestPrompt(t *testing.T) {
	prompt := Prompt(acme())
	for _, want := range []string{
		"Brand Name: Acme",
		"Location: Berlin",
		"urn:entity:tv_show",
		"very_high",
		"CRISIS MANAGEMENT",
		`"entityType": "urn:entity:brand"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
