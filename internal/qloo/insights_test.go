package qloo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSearch_RetriesOnceWithoutLocation(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, n int) {
		if r.URL.Query().Get("filter.location") != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "bad location")
			return
		}
		okJSON(w, `{"results":[{"name":"Nike","entity_id":"n1","popularity":0.95}]}`)
	})

	got := newTestClient(server).Search(context.Background(), "nike", SearchOptions{Limit: 1, Location: "Atlantis", MinPopularity: 0.3})
	if len(got) != 1 || got[0].Name != "Nike" {
		t.Fatalf("Search() = %+v", got)
	}

	reqs := captured()
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	first := reqs[0].Query
	if first["take"][0] != "2" {
		t.Errorf("take = %q, want at least 2", first["take"][0])
	}
	if first["filter.popularity.min"][0] != "0.3" {
		t.Errorf("filter.popularity.min = %v", first["filter.popularity.min"])
	}
	if _, ok := first["filter.popularity.max"]; ok {
		t.Error("filter.popularity.max sent without being set")
	}
	if _, ok := reqs[1].Query["filter.location"]; ok {
		t.Error("retry still carried filter.location")
	}
}

func TestSearch_FinalFailureIsEmpty(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	got := newTestClient(server).Search(context.Background(), "nike", SearchOptions{})
	if got == nil || len(got) != 0 {
		t.Errorf("Search() = %#v, want empty non-nil slice", got)
	}
	if n := len(captured()); n != 1 {
		t.Errorf("got %d requests, want 1 (no location, no retry)", n)
	}
}

func TestTrending(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		okJSON(w, `{"results":{"entities":[{"name":"A"},{"name":"B"}]}}`)
	})

	got := newTestClient(server).Trending(context.Background(), "", TrendingOptions{Limit: 5})
	if len(got) != 2 {
		t.Fatalf("Trending() = %+v", got)
	}
	req := captured()[0]
	if req.Path != "/trends/category" || req.Query["type"][0] != TypeBrand || req.Query["period"][0] != "weekly" {
		t.Errorf("request = %s %v", req.Path, req.Query)
	}
}

func TestAudiences_FallsBackToCanned(t *testing.T) {
	server, _ := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		w.WriteHeader(http.StatusNotFound)
	})

	got := newTestClient(server).Audiences(context.Background(), []string{"e1"}, "Berlin")
	if diff := cmp.Diff(MockAudiences(), got); diff != "" {
		t.Errorf("Audiences() mismatch (-want +got):\n%s", diff)
	}
}

func TestAudiences_UsesAffinityAsMatch(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		okJSON(w, `{"results":{"audiences":[{"id":"a1","name":"Runners","query":{"affinity":0.66}}]}}`)
	})

	got := newTestClient(server).Audiences(context.Background(), []string{"e1", "e2"}, "")
	want := []Audience{{ID: "a1", Name: "Runners", Match: 0.66}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Audiences() mismatch (-want +got):\n%s", diff)
	}
	q := captured()[0].Query
	if diff := cmp.Diff([]string{"e1", "e2"}, q["signal.interests.entities"]); diff != "" {
		t.Errorf("signal.interests.entities mismatch:\n%s", diff)
	}
	if q["filter.parents.types"][0] != TypePerson {
		t.Errorf("filter.parents.types = %v", q["filter.parents.types"])
	}
}

func TestCompare_Summarizes(t *testing.T) {
	server, _ := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		okJSON(w, `{"results":{"tags":[
			{"name":"indie","query":{"affinity":0.004,"a":{"affinity":0.9},"b":{"affinity":0.2}}},
			{"name":"pop","query":{"affinity":0.001,"a":{"affinity":0.1},"b":{"affinity":0.5}}},
			{"name":"jazz","query":{"affinity":0.007}}
		]}}`)
	})

	got := newTestClient(server).Compare(context.Background(), "a", "b")
	if got.TotalTags != 3 {
		t.Errorf("TotalTags = %d", got.TotalTags)
	}
	if diff := cmp.Diff([]string{"indie", "jazz"}, got.CommonTags); diff != "" {
		t.Errorf("CommonTags mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(Differences{Profile1Only: []string{"indie"}, Profile2Only: []string{"pop"}}, got.Differences); diff != "" {
		t.Errorf("Differences mismatch:\n%s", diff)
	}
	// avg = 0.004, overlap = 0.8
	if got.OverlapScore < 0.799 || got.OverlapScore > 0.801 {
		t.Errorf("OverlapScore = %v, want 0.8", got.OverlapScore)
	}
}

func TestCompare_OverlapCappedAtOne(t *testing.T) {
	got := summarizeComparison([]compareTag{{Name: "x", Query: &compareQuery{Affinity: 0.5}}})
	if got.OverlapScore != 1 {
		t.Errorf("OverlapScore = %v, want 1", got.OverlapScore)
	}
}

func TestCompare_FailureIsCanned(t *testing.T) {
	server, _ := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	got := newTestClient(server).Compare(context.Background(), "a", "b")
	if diff := cmp.Diff(MockComparison(), got); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareBrands(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		switch r.URL.Path {
		case "/search":
			switch r.URL.Query().Get("query") {
			case "Acme":
				okJSON(w, `{"results":[{"name":"Acme","entity_id":"acme-1"}]}`)
			case "Globex":
				okJSON(w, `{"results":[{"name":"Globex","entity_id":"globex-1"}]}`)
			default:
				okJSON(w, `{"results":[]}`)
			}
		case "/v2/insights/compare":
			okJSON(w, `{"results":{"tags":[{"name":"tech","query":{"affinity":0.002}}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client := newTestClient(server)

	got := client.CompareBrands(context.Background(), "Acme", "Globex", "")
	if got == nil || got.TotalTags != 1 {
		t.Fatalf("CompareBrands() = %+v", got)
	}
	reqs := captured()
	last := reqs[len(reqs)-1].Query
	if last["a.signal.interests.entities"][0] != "acme-1" || last["b.signal.interests.entities"][0] != "globex-1" {
		t.Errorf("compare query = %v", last)
	}

	if got := client.CompareBrands(context.Background(), "Acme", "Nobody", ""); got != nil {
		t.Errorf("CompareBrands() with unknown competitor = %+v, want nil", got)
	}
}

func TestBrandInsights_ResolvesNames(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("query") == "Acme" {
				okJSON(w, `{"results":[{"name":"Acme","entity_id":"acme-1"}]}`)
				return
			}
			okJSON(w, `{"results":[]}`)
		case insightsPath:
			okJSON(w, `{"results":{"entities":[{"name":"A","tags":[{"name":"design","type":"urn:tag:keyword"}]}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got := newTestClient(server).BrandInsights(context.Background(), []string{"Acme", "Nobody"}, "Berlin")
	if diff := cmp.Diff([]string{"design"}, got.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
	reqs := captured()
	last := reqs[len(reqs)-1]
	if last.Path != insightsPath {
		t.Fatalf("last request = %s, want insights", last.Path)
	}
	if diff := cmp.Diff([]string{"acme-1"}, last.Query["signal.interests.entities"]); diff != "" {
		t.Errorf("insight signal (-want +got):\n%s", diff)
	}
	if url.Values(last.Query).Get("signal.location") != "Berlin" {
		t.Errorf("signal.location = %q", url.Values(last.Query).Get("signal.location"))
	}
}

func TestGeospatial_RetriesThenCanned(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := newTestClient(server).Geospatial(context.Background(), "Paris")
	if diff := cmp.Diff(MockPlaces(), got); diff != "" {
		t.Errorf("Geospatial() mismatch (-want +got):\n%s", diff)
	}
	reqs := captured()
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	if reqs[0].Query["filter.location.query"][0] != "Paris" {
		t.Errorf("first request missing location: %v", reqs[0].Query)
	}
	if _, ok := reqs[1].Query["filter.location.query"]; ok {
		t.Error("retry still carried filter.location.query")
	}
}

func TestInsights(t *testing.T) {
	server, _ := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		okJSON(w, `{"results":{"entities":[
			{"name":"A","tags":[{"name":"indie","type":"urn:tag:genre:music"},{"name":"vinyl","type":"urn:tag:keyword"}]},
			{"name":"B","tags":[{"name":"indie","type":"urn:tag:genre:music"},{"name":"x"}]}
		]}}`)
	})

	got := newTestClient(server).Insights(context.Background(), []string{"e1"}, "Berlin")
	if diff := cmp.Diff([]string{"indie", "vinyl", "x"}, got.Tags); diff != "" {
		t.Errorf("Tags mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"genre", "keyword", "general"}, got.CulturalDomains); diff != "" {
		t.Errorf("CulturalDomains mismatch:\n%s", diff)
	}
	if got.Confidence != 0.8 {
		t.Errorf("Confidence = %v", got.Confidence)
	}
}

func TestInsights_NoEntitiesIsCanned(t *testing.T) {
	got := NewClient("k").Insights(context.Background(), nil, "")
	if got.Confidence != 0.85 || len(got.Audiences) != 3 {
		t.Errorf("Insights() = %+v, want canned profile", got)
	}
}

func TestPing(t *testing.T) {
	server, captured := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		okJSON(w, `{}`)
	})
	if err := newTestClient(server).Ping(context.Background()); err != nil {
		t.Fatalf("Ping() = %v", err)
	}
	reqs := captured()
	if len(reqs) != 2 || reqs[0].Path != "/search" || reqs[1].Path != "/trends/category" {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestPing_Failure(t *testing.T) {
	server, _ := recordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "no key")
	})
	err := newTestClient(server).Ping(context.Background())
	if err == nil || err.Error() != "search: HTTP 401: no key" {
		t.Errorf("Ping() = %v", err)
	}
}
