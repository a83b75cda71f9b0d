// Package campaign defines the campaign brief collected from the user and
// the validation applied before any LLM or Qloo call is made.
package campaign

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fpang/campaign-intel/internal/assets"
)

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid campaign input")

// MaxAttachmentSize is the per-file attachment limit.
const MaxAttachmentSize = 10 << 20

// Category is the kind of business being promoted.
type Category string

// Categories offered by the campaign form.
var Categories = []Category{
	"Website/App", "E-commerce", "SaaS/Software", "Physical Product",
	"Service Business", "Restaurant/Food", "Fashion/Beauty", "Health/Wellness",
	"Education", "Finance", "Real Estate", "Entertainment", "Technology", "Other",
}

// Scope is the campaign objective.
type Scope string

// Scopes offered by the campaign form.
var Scopes = []Scope{
	"Brand Awareness", "Product Launch", "Market Expansion", "Crisis Management",
	"Reputation Building", "Lead Generation", "Customer Retention", "Thought Leadership",
	"Social Recognition", "Sales Growth", "Investor Relations", "Employee Recruitment",
	"Community Engagement", "Other",
}

// Budget is a spend bracket.
type Budget string

// Budgets offered by the campaign form.
var Budgets = []Budget{
	"Under $1,000", "$1,000 - $5,000", "$5,000 - $10,000", "$10,000 - $25,000",
	"$25,000 - $50,000", "$50,000 - $100,000", "Over $100,000",
}

// Attachment describes an uploaded file. Only metadata is kept; contents are
// never read or forwarded.
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// allowedTypes is the MIME allowlist; "image/*" matches any image subtype.
var allowedTypes = []string{
	"image/*",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Allowed reports whether the attachment's MIME type is on the allowlist.
func (a Attachment) Allowed() bool {
	mime := strings.ToLower(strings.TrimSpace(a.Type))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	for _, t := range allowedTypes {
		if prefix, ok := strings.CutSuffix(t, "*"); ok {
			if strings.HasPrefix(mime, prefix) && len(mime) > len(prefix) {
				return true
			}
			continue
		}
		if mime == t {
			return true
		}
	}
	return false
}

// Input is a submitted campaign brief. It is passed by value and never
// mutated after Validate succeeds.
type Input struct {
	BrandName       string       `json:"brandName"`
	Category        Category     `json:"category"`
	ProductDetails  string       `json:"productDetails"`
	Location        string       `json:"location"`
	TargetScope     Scope        `json:"targetScope"`
	Budget          Budget       `json:"budget,omitempty"`
	AdditionalNotes string       `json:"additionalNotes,omitempty"`
	Attachments     []Attachment `json:"uploadedFiles,omitempty"`
}

// Validate checks required fields, enum membership, and attachment limits.
// Every returned error wraps ErrInvalidInput.
func (in Input) Validate() error {
	var problems []string

	required := []struct{ name, value string }{
		{"brandName", in.BrandName},
		{"category", string(in.Category)},
		{"productDetails", in.ProductDetails},
		{"location", in.Location},
		{"targetScope", string(in.TargetScope)},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}

	if in.Category != "" && !slices.Contains(Categories, in.Category) {
		problems = append(problems, fmt.Sprintf("unknown category %q", in.Category))
	}
	if in.TargetScope != "" && !slices.Contains(Scopes, in.TargetScope) {
		problems = append(problems, fmt.Sprintf("unknown targetScope %q", in.TargetScope))
	}
	if in.Budget != "" && !slices.Contains(Budgets, in.Budget) {
		problems = append(problems, fmt.Sprintf("unknown budget %q", in.Budget))
	}

	for _, a := range in.Attachments {
		if !a.Allowed() {
			problems = append(problems, fmt.Sprintf("attachment %q has unsupported type %q", a.Name, a.Type))
		}
		if a.Size > MaxAttachmentSize {
			problems = append(problems, fmt.Sprintf("attachment %q exceeds %d MB", a.Name, MaxAttachmentSize>>20))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// BudgetOrDefault returns the budget, or "Not specified" when none was chosen.
func (in Input) BudgetOrDefault() string {
	if in.Budget == "" {
		return "Not specified"
	}
	return string(in.Budget)
}

// NotesOrDefault returns the additional notes, or "None" when empty.
func (in Input) NotesOrDefault() string {
	if strings.TrimSpace(in.AdditionalNotes) == "" {
		return "None"
	}
	return in.AdditionalNotes
}

// PromptData returns the campaign block used by every prompt template.
func (in Input) PromptData() assets.Campaign {
	return assets.Campaign{
		BrandName:      in.BrandName,
		Category:       string(in.Category),
		ProductDetails: in.ProductDetails,
		Location:       in.Location,
		TargetScope:    string(in.TargetScope),
		Budget:         in.BudgetOrDefault(),
		Notes:          in.NotesOrDefault(),
		Attachments:    len(in.Attachments),
	}
}
