package analysis

import (
	"context"
	"encoding/json"
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

const minimalDoc = `{"overview":{},"strategy":{},"implementation":{},"measurement":{},"recommendations":{},"qlooInsights":{}}`

const modelAnswer = "Sure! Here is the analysis:\n```json\n" + `{
  "overview": {
    "executiveSummary": "Acme can own Berlin's smart-home conversation.",
    "keyObjectives": ["Launch awareness", "Tech press coverage",],
    "culturalInsights": {"keyFindings": ["Berliners favour design-led tech"]}
  },
  "strategy": {"mediaRelations": {"keyMessages": ["Quietly smart"]}},
  "implementation": {"budgetAllocation": {"mediaRelations": "40%"}},
  "measurement": {"tools": ["Brandwatch"]},
  "recommendations": {"immediate": ["Brief tech editors"]},
  "qlooInsights": {
    "keyCulturalFindings": ["Indie electronic scenes over-index", "Design weeks matter"],
    "demographicInsights": {"25-34": {"engagement": 88, "preferences": "Design-aware"}},
    "locationAnalysis": {"topLocations": [{"name": "Kreuzberg", "score": 91}], "culturalMetrics": {"marketPenetration": 0.4}}
  }
}` + "\n```\nLet me know if you need more."

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestSchema_RequiresAllSections(t *testing.T) {
	required, _ := Schema()["required"].([]any)
	var got []string
	for _, r := range required {
		got = append(got, r.(string))
	}
	want := []string{"overview", "strategy", "implementation", "measurement", "recommendations", "qlooInsights"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	if _, ok := Schema()["$schema"]; ok {
		t.Error("$schema should be stripped")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"minimal", minimalDoc, ""},
		{"extra fields allowed", `{"overview":{"mood":"bold"},"strategy":{},"implementation":{},"measurement":{},"recommendations":{},"qlooInsights":{},"notes":"x"}`, ""},
		{"missing overview", `{"strategy":{},"implementation":{},"measurement":{},"recommendations":{},"qlooInsights":{}}`, "overview"},
		{"wrong type", strings.Replace(minimalDoc, `"recommendations":{}`, `"recommendations":{"immediate":"call someone"}`, 1), "immediate"},
		{"engagement out of range", strings.Replace(minimalDoc, `"qlooInsights":{}`, `"qlooInsights":{"demographicInsights":{"18-24":{"engagement":140}}}`, 1), "engagement"},
		{"not an object", `["overview"]`, "object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(decode(t, tt.doc))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantErr)) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestFallbackAndExampleValidate(t *testing.T) {
	for name, a := range map[string]CampaignAnalysis{"fallback": Fallback(), "example": example("Berlin")} {
		b, err := json.Marshal(a)
		if err != nil {
			t.Fatal(err)
		}
		if err := Validate(decode(t, string(b))); err != nil {
			t.Errorf("%s does not validate: %v", name, err)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(modelAnswer)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if diff := cmp.Diff([]string{"Indie electronic scenes over-index", "Design weeks matter"}, got.KeyFindings()); diff != "" {
		t.Errorf("KeyFindings mismatch:\n%s", diff)
	}
	if got.QlooInsights.DemographicInsights["25-34"].Engagement != 88 {
		t.Errorf("demographics = %+v", got.QlooInsights.DemographicInsights)
	}
	if got.QlooInsights.LocationAnalysis.TopLocations[0].Name != "Kreuzberg" {
		t.Errorf("topLocations = %+v", got.QlooInsights.LocationAnalysis.TopLocations)
	}
	if got.Implementation.BudgetAllocation["mediaRelations"] != "40%" {
		t.Errorf("budget = %v", got.Implementation.BudgetAllocation)
	}
}

func TestKeyFindings_FallsBackToOverview(t *testing.T) {
	a := &CampaignAnalysis{Overview: Overview{CulturalInsights: CulturalInsights{KeyFindings: []string{"x"}}}}
	if diff := cmp.Diff([]string{"x"}, a.KeyFindings()); diff != "" {
		t.Error(diff)
	}
	var nilAnalysis *CampaignAnalysis
	if nilAnalysis.KeyFindings() != nil || nilAnalysis.ImmediateRecommendations() != nil {
		t.Error("nil analysis should have no findings or recommendations")
	}
}

func TestSynthesize_Parsed(t *testing.T) {
	var prompt string
	gen := llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return modelAnswer, nil
	})
	results := []qloo.Result{
		{Query: qloo.Descriptor{EntityType: qloo.TypeBrand, Description: "BRAND ANALYSIS: Acme"}, Success: true, Data: json.RawMessage(`{"results":{"entities":[{"name":"Acme"}]}}`)},
		{Query: qloo.Descriptor{EntityType: qloo.TypePlace, Description: "VENUE & MEDIA OUTLET DISCOVERY: Berlin"}, Error: "HTTP 500: boom"},
	}

	res := New(gen).Synthesize(context.Background(), acme(), results)
	if res.Kind != KindParsed || res.Source != "stub" || res.Reason != "" {
		t.Fatalf("Synthesize() = kind %q source %q reason %q", res.Kind, res.Source, res.Reason)
	}
	if res.Analysis.Overview.ExecutiveSummary != "Acme can own Berlin's smart-home conversation." {
		t.Errorf("summary = %q", res.Analysis.Overview.ExecutiveSummary)
	}
	for _, want := range []string{
		"Brand Name: Acme",
		"BRAND ANALYSIS: Acme",
		"HTTP 500: boom",
		`"qlooInsights"`,
		`"required"`,
		"65+",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSynthesize_FallsBack(t *testing.T) {
	tests := []struct {
		name       string
		gen        llm.Generator
		wantReason string
	}{
		{"no generator", nil, "no language model configured"},
		{"model error", reply("", &llm.Error{Provider: "openai", Kind: llm.KindTimeout, Message: "deadline exceeded"}), "deadline exceeded"},
		{"prose", reply("I am unable to produce that analysis.", nil), "parse analysis"},
		{"unrepairable", reply(`{"overview": {"executiveSummary": }`, nil), "parse analysis"},
		{"missing section", reply(`{"overview":{},"strategy":{}}`, nil), "schema validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.gen).Synthesize(context.Background(), acme(), nil)
			if !res.Fallback() || res.Source != SourceFallback {
				t.Fatalf("Synthesize() = kind %q source %q", res.Kind, res.Source)
			}
			if !strings.Contains(res.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
			if diff := cmp.Diff(Fallback(), res.Analysis); diff != "" {
				t.Errorf("analysis mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateContent(t *testing.T) {
	var prompts []string
	gen := llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompts = append(prompts, p)
		return "content", nil
	})
	s := New(gen)
	ctx := context.Background()

	for _, kind := range []ContentKind{ContentPressRelease, ContentSocialMedia, ContentBlogPost, "newsletter"} {
		if out, err := s.GenerateContent(ctx, acme(), kind); err != nil || out != "content" {
			t.Fatalf("GenerateContent(%s) = %q, %v", kind, out, err)
		}
	}
	wants := []string{"press release", "social media content strategy", "blog post", "compelling marketing content"}
	for i, want := range wants {
		if !strings.Contains(prompts[i], want) {
			t.Errorf("prompt %d missing %q:\n%s", i, want, prompts[i])
		}
	}
}

func TestCrisisAndCompetitor(t *testing.T) {
	var prompt string
	gen := llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "ok", nil
	})
	s := New(gen)
	ctx := context.Background()

	if _, err := s.CrisisResponse(ctx, acme(), "product recall"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "Acme facing a product recall crisis") {
		t.Errorf("crisis prompt = %q", prompt)
	}

	cmpData := &qloo.Comparison{OverlapScore: 0.42, CommonTags: []string{"smart home"}}
	if _, err := s.CompetitorAnalysis(ctx, acme(), []string{"Globex", "Initech"}, cmpData); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "competitors: Globex, Initech") || !strings.Contains(prompt, `"overlapScore": 0.42`) {
		t.Errorf("competitor prompt = %q", prompt)
	}

	if _, err := s.CompetitorAnalysis(ctx, acme(), []string{"Globex"}, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(prompt, "taste-overlap") {
		t.Error("comparison block rendered without data")
	}
}

func TestFreeformErrors(t *testing.T) {
	_, err := New(nil).GenerateContent(context.Background(), acme(), ContentBlogPost)
	if !errors.Is(err, errNoGenerator) {
		t.Errorf("nil generator: %v", err)
	}

	modelErr := &llm.Error{Provider: "gemini", Kind: llm.KindAPIKey, Message: "invalid key"}
	_, err = New(reply("", modelErr)).CrisisResponse(context.Background(), acme(), "outage")
	if llm.KindOf(err) != llm.KindAPIKey {
		t.Errorf("KindOf(%v) = %v, want KindAPIKey", err, llm.KindOf(err))
	}
	if !strings.HasPrefix(err.Error(), "generate crisis response: ") {
		t.Errorf("err = %q", err)
	}
}
