package qloo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHasQueryKey(t *testing.T) {
	tests := []struct {
		params map[string]any
		want   bool
	}{
		{map[string]any{"signal.location.query": "Paris"}, true},
		{map[string]any{"filter.results.entities.query": []any{"x"}}, true},
		{map[string]any{"filter.type": TypeBrand, "take": 10}, false},
		{map[string]any{"query": "x"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasQueryKey(tt.params); got != tt.want {
			t.Errorf("HasQueryKey(%v) = %v, want %v", tt.params, got, tt.want)
		}
	}
}

func TestNestParams(t *testing.T) {
	got := NestParams(map[string]any{
		"a.b.c": 1,
		"a.b.d": "x",
		"a.e":   true,
		"f":     []any{"y"},
	})
	want := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1, "d": "x"},
			"e": true,
		},
		"f": []any{"y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NestParams mismatch (-want +got):\n%s", diff)
	}
}

func TestNestParams_ConflictDropsLaterKey(t *testing.T) {
	// "signal.location" sorts before "signal.location.query", so the scalar
	// wins and the deeper key is dropped.
	got := NestParams(map[string]any{
		"signal.location":       "Berlin",
		"signal.location.query": "Paris",
	})
	want := map[string]any{"signal": map[string]any{"location": "Berlin"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NestParams mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenQuery(t *testing.T) {
	got := FlattenQuery(map[string]any{
		"s":     "v",
		"f":     0.25,
		"i":     10,
		"b":     true,
		"arr":   []any{"x", 2.0},
		"strs":  []string{"p", "q"},
		"skip":  nil,
		"obj":   map[string]any{"k": "v"},
		"whole": 4.0,
	})
	want := map[string][]string{
		"s":     {"v"},
		"f":     {"0.25"},
		"i":     {"10"},
		"b":     {"true"},
		"arr":   {"x", "2"},
		"strs":  {"p", "q"},
		"obj":   {`{"k":"v"}`},
		"whole": {"4"},
	}
	if diff := cmp.Diff(want, map[string][]string(got)); diff != "" {
		t.Errorf("FlattenQuery mismatch (-want +got):\n%s", diff)
	}
}
