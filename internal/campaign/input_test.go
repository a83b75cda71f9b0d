package campaign

import (
	"errors"
	"strings"
	"testing"
)

func validInput() Input {
	return Input{
		BrandName:      "Acme",
		Category:       "Technology",
		ProductDetails: "A smart home hub",
		Location:       "Berlin",
		TargetScope:    "Product Launch",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr string
	}{
		{"valid", func(*Input) {}, ""},
		{"valid with budget", func(in *Input) { in.Budget = "$5,000 - $10,000" }, ""},
		{"missing brand", func(in *Input) { in.BrandName = "  " }, "brandName is required"},
		{"missing location", func(in *Input) { in.Location = "" }, "location is required"},
		{"unknown category", func(in *Input) { in.Category = "Crypto" }, `unknown category "Crypto"`},
		{"unknown scope", func(in *Input) { in.TargetScope = "Go Viral" }, "unknown targetScope"},
		{"unknown budget", func(in *Input) { in.Budget = "$3" }, "unknown budget"},
		{
			"bad attachment type",
			func(in *Input) {
				in.Attachments = []Attachment{{Name: "x.exe", Size: 10, Type: "application/x-msdownload"}}
			},
			"unsupported type",
		},
		{
			"attachment too large",
			func(in *Input) {
				in.Attachments = []Attachment{{Name: "deck.pdf", Size: MaxAttachmentSize + 1, Type: "application/pdf"}}
			},
			"exceeds 10 MB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error %v does not wrap ErrInvalidInput", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAttachmentAllowed(t *testing.T) {
	tests := map[string]bool{
		"image/png":                 true,
		"image/jpeg":                true,
		"IMAGE/GIF":                 true,
		"image/":                    false,
		"application/pdf":           true,
		"text/plain":                true,
		"text/plain; charset=utf-8": true,
		"application/msword":        true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"text/html": false,
		"video/mp4": false,
		"":          false,
	}
	for mime, want := range tests {
		if got := (Attachment{Type: mime}).Allowed(); got != want {
			t.Errorf("Allowed(%q) = %v, want %v", mime, got, want)
		}
	}
}

func TestDefaults(t *testing.T) {
	in := validInput()
	if in.BudgetOrDefault() != "Not specified" || in.NotesOrDefault() != "None" {
		t.Errorf("defaults = %q, %q", in.BudgetOrDefault(), in.NotesOrDefault())
	}
	in.Budget = "Over $100,000"
	in.AdditionalNotes = "Competitor: Globex"
	if in.BudgetOrDefault() != "Over $100,000" || in.NotesOrDefault() != "Competitor: Globex" {
		t.Errorf("values = %q, %q", in.BudgetOrDefault(), in.NotesOrDefault())
	}
}
