package jsonutil

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"too short", "```{}```", "```{}```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name string
		text string
		open byte
		want string
	}{
		{
			name: "object in prose",
			text: `Sure! Here you go: {"a": {"b": 1}} Let me know if you need more.`,
			open: '{',
			want: `{"a": {"b": 1}}`,
		},
		{
			name: "braces inside strings are ignored",
			text: `{"note": "use } carefully", "x": 1} trailing }`,
			open: '{',
			want: `{"note": "use } carefully", "x": 1}`,
		},
		{
			name: "escaped quote inside string",
			text: `{"q": "say \"}\" now"}`,
			open: '{',
			want: `{"q": "say \"}\" now"}`,
		},
		{
			name: "array",
			text: "Plan:\n[{\"entityType\": \"brand\"}, {\"entityType\": \"place\"}]\nDone.",
			open: '[',
			want: `[{"entityType": "brand"}, {"entityType": "place"}]`,
		},
		{
			name: "double escaped document falls back to plain counting",
			text: `result: {\"name\": \"Acme\"}`,
			open: '{',
			want: `{\"name\": \"Acme\"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBalanced(tt.text, tt.open)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractBalanced() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBalanced_NoJSON(t *testing.T) {
	for _, text := range []string{
		"I'm sorry, I can't help with that.",
		`{"unterminated": [1, 2`,
		"",
	} {
		if _, err := ExtractBalanced(text, '{'); !errors.Is(err, ErrNoJSON) {
			t.Errorf("ExtractBalanced(%q) error = %v, want ErrNoJSON", text, err)
		}
	}
}

func TestExtractJSON_PicksFirstOpener(t *testing.T) {
	got, err := ExtractJSON(`list: [1, {"a": 2}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[1, {"a": 2}]` {
		t.Errorf("got %q", got)
	}

	got, err = ExtractJSON(`obj: {"list": [1, 2]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"list": [1, 2]}` {
		t.Errorf("got %q", got)
	}
}

func TestParseJSON(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	got, err := ParseJSON[[]item]("```json\n[{\"name\":\"a\"},{\"name\":\"b\"}]\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Name != "b" {
		t.Errorf("unexpected result: %+v", got)
	}

	if _, err := ParseJSON[[]item]("no json here"); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestPreview_KeepsRunesWhole(t *testing.T) {
	// 199 ASCII bytes then a 3-byte rune straddling the cut.
	s := strings.Repeat("a", 199) + "€" + strings.Repeat("b", 10)
	got := preview(s)
	if !utf8.ValidString(got) {
		t.Fatalf("preview split a rune: %q", got)
	}
	if want := strings.Repeat("a", 199) + "..."; got != want {
		t.Errorf("preview = %q, want %q", got, want)
	}
	if short := "héllo"; preview(short) != short {
		t.Errorf("short text changed: %q", preview(short))
	}
}
