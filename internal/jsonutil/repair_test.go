package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trailing commas",
			in:   `{"a":[1,2,],"b":"x",}`,
			want: `{"a":[1,2],"b":"x"}`,
		},
		{
			name: "invalid escape",
			in:   `{"a":"50\% off"}`,
			want: `{"a":"50% off"}`,
		},
		{
			name: "raw newline inside string",
			in:   "{\"a\":\"line1\nline2\"}",
			want: `{"a":"line1 line2"}`,
		},
		{
			name: "document escaped one level too deep",
			in:   `{\"name\": \"Acme\", \"tags\": [\"a\"]}`,
			want: `{"name": "Acme", "tags": ["a"]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.in)
			if got != tt.want {
				t.Errorf("Repair() = %q, want %q", got, tt.want)
			}
			if !json.Valid([]byte(got)) {
				t.Errorf("Repair() output is not valid JSON: %q", got)
			}
		})
	}
}

func TestRepair_IdempotentOnValidJSON(t *testing.T) {
	docs := []string{
		`{"a":1}`,
		`{"quote":"she said \"hi\"","path":"C:\\temp","nl":"a\nb"}`,
		`[{"x":[1,2,3]},{"y":{"z":null}}]`,
		`{"empty":{},"list":[],"t":true,"f":false,"n":-1.5e3}`,
	}
	for _, doc := range docs {
		if got := Repair(doc); got != doc {
			t.Errorf("Repair changed valid JSON:\n in: %s\nout: %s", doc, got)
		}

		var want any
		if err := json.Unmarshal([]byte(doc), &want); err != nil {
			t.Fatalf("test doc is invalid: %v", err)
		}
		open := doc[0]
		got, err := ParseRepaired[any](doc, open)
		if err != nil {
			t.Fatalf("ParseRepaired(%s) error: %v", doc, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseRepaired changed parsed value (-want +got):\n%s", diff)
		}

		again, err := ParseRepaired[any](Repair(Repair(doc)), open)
		if err != nil {
			t.Fatalf("ParseRepaired after double repair error: %v", err)
		}
		if diff := cmp.Diff(want, again); diff != "" {
			t.Errorf("double repair changed parsed value (-want +got):\n%s", diff)
		}
	}
}

func TestRepair_BestEffortOnly(t *testing.T) {
	// Not every input can be fixed; Repair must still return without panicking.
	in := `{"a": , "b": }`
	out := Repair(in)
	if json.Valid([]byte(out)) {
		t.Errorf("did not expect %q to become valid", out)
	}
}

func TestParseRepaired(t *testing.T) {
	type analysis struct {
		Overview struct {
			Summary string `json:"summary"`
		} `json:"overview"`
		Tags []string `json:"tags"`
	}

	raw := "Here is your analysis:\n" +
		`{"overview": {"summary": "Strong fit",}, "tags": ["music", "art",],}` +
		"\nHope this helps!"

	got, err := ParseRepaired[analysis](raw, '{')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Overview.Summary != "Strong fit" {
		t.Errorf("summary = %q", got.Overview.Summary)
	}
	if diff := cmp.Diff([]string{"music", "art"}, got.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRepaired_Failures(t *testing.T) {
	if _, err := ParseRepaired[map[string]any]("no braces at all", '{'); err == nil {
		t.Error("expected error for missing JSON")
	}
	if _, err := ParseRepaired[map[string]any](`{"a": , }`, '{'); err == nil {
		t.Error("expected error for unrepairable JSON")
	}
}
