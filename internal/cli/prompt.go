package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fpang/campaign-intel/internal/campaign"
)

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints label and returns the trimmed answer, or def when the answer is
// empty. io.EOF is returned once input is exhausted.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	input, err := p.in.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	if input == "" {
		return def, nil
	}
	return input, nil
}

// Choice lists options and returns the one picked by number or exact text.
// An empty answer picks def; def "" makes the question required.
func (p *Prompter) Choice(label string, options []string, def string) (string, error) {
	for i, o := range options {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, o)
	}
	for {
		answer, err := p.Line(label, def)
		if err != nil {
			return "", err
		}
		if answer == "" && def == "" {
			continue
		}
		if answer == def {
			return answer, nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, o := range options {
			if strings.EqualFold(o, answer) {
				return o, nil
			}
		}
		fmt.Fprintf(p.out, "Please pick 1-%d.\n", len(options))
	}
}

// Brief collects a campaign brief interactively, repeating required
// questions until they are answered.
func (p *Prompter) Brief() (campaign.Input, error) {
	var in campaign.Input
	required := func(label string) (string, error) {
		for {
			v, err := p.Line(label, "")
			if err != nil || v != "" {
				return v, err
			}
		}
	}

	var err error
	if in.BrandName, err = required("Brand name"); err != nil {
		return in, err
	}
	category, err := p.Choice("Category", toStrings(campaign.Categories), "")
	if err != nil {
		return in, err
	}
	in.Category = campaign.Category(category)
	if in.ProductDetails, err = required("Product or service details"); err != nil {
		return in, err
	}
	if in.Location, err = required("Location"); err != nil {
		return in, err
	}
	scope, err := p.Choice("Campaign objective", toStrings(campaign.Scopes), "")
	if err != nil {
		return in, err
	}
	in.TargetScope = campaign.Scope(scope)
	budget, err := p.Choice("Budget (optional)", toStrings(campaign.Budgets), "none")
	if err != nil {
		return in, err
	}
	if budget != "none" {
		in.Budget = campaign.Budget(budget)
	}
	if in.AdditionalNotes, err = p.Line("Additional notes (optional)", ""); err != nil && err != io.EOF {
		return in, err
	}
	return in, in.Validate()
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
