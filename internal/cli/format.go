package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/fpang/campaign-intel/internal/pipeline"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/fpang/campaign-intel/internal/store"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	userStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	assistantHead = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// Markdown renders assistant replies for the terminal. It falls back to the
// raw text when no renderer could be built.
type Markdown struct {
	r *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width columns.
func NewMarkdown(width int) *Markdown {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Markdown{}
	}
	return &Markdown{r: r}
}

// Render returns text as styled terminal output.
func (m *Markdown) Render(text string) string {
	if m == nil || m.r == nil {
		return text
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// PrintMessage writes one chat message.
func PrintMessage(w io.Writer, md *Markdown, msg store.Message) {
	switch {
	case msg.Role == store.RoleUser:
		fmt.Fprintln(w, userStyle.Render("You: ")+msg.Content)
	case msg.IsError:
		fmt.Fprintln(w, errorStyle.Render(msg.Content))
	default:
		fmt.Fprintln(w, assistantHead.Render("Assistant:"))
		fmt.Fprintln(w, md.Render(msg.Content))
	}
}

// PrintReport writes a short human-readable summary of a run.
func PrintReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s · %s in %s", r.Input.BrandName, r.Input.TargetScope, r.Input.Location)))
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", label)), value)
	}
	row("Report", r.ID)
	row("Duration", FormatDurationShort(time.Duration(r.DurationMs)*time.Millisecond))
	row("Plan", sourceLabel(r.Plan.Source, r.Plan.Reason))
	row("Qloo", fmt.Sprintf("%d of %d queries succeeded", r.Successes(), len(r.Results)))
	row("Analysis", sourceLabel(r.Analysis.Source, r.Analysis.Reason))
	for _, f := range r.Analytics.Facets() {
		row(f.Title, sourceLabel(f.Source, f.Reason))
	}
	if r.ArchiveKey != "" {
		row("Archived", r.ArchiveKey)
	}

	a := &r.Analysis.Analysis
	if s := a.Overview.ExecutiveSummary; s != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Executive summary"))
		fmt.Fprintln(w, s)
	}
	printList(w, "Key findings", a.KeyFindings())
	printList(w, "Immediate recommendations", a.ImmediateRecommendations())
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(title))
	for _, it := range items {
		fmt.Fprintln(w, "  • "+it)
	}
}

func sourceLabel(source, reason string) string {
	if source != "fallback" {
		return source
	}
	label := "fallback"
	if reason != "" {
		label += " (" + strings.TrimSpace(reason) + ")"
	}
	return warnStyle.Render(label)
}

// PrintHistory writes one line per saved session.
func PrintHistory(w io.Writer, records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, labelStyle.Render("No saved sessions."))
		return
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %-20s %s\n",
			r.ID,
			labelStyle.Render(r.Timestamp.Local().Format("2006-01-02 15:04")),
			r.CampaignType,
			r.Summary)
	}
}

// PrintEntities writes one ranked line per Qloo entity with its popularity.
func PrintEntities(w io.Writer, title string, entities []qloo.Entity) {
	fmt.Fprintln(w, titleStyle.Render(title))
	if len(entities) == 0 {
		fmt.Fprintln(w, labelStyle.Render("No entities found."))
		return
	}
	for i, e := range entities {
		line := fmt.Sprintf("%2d. %s", i+1, e.Name)
		if e.Popularity > 0 {
			line += labelStyle.Render(fmt.Sprintf("  popularity %.0f%%", e.Popularity*100))
		}
		if place := e.Place(); place != "" {
			line += labelStyle.Render("  " + place)
		}
		fmt.Fprintln(w, line)
	}
}

// PrintInsights writes a cultural insight profile.
func PrintInsights(w io.Writer, in qloo.CulturalInsights) {
	fmt.Fprintln(w, titleStyle.Render("Cultural insights"))
	fmt.Fprintf(w, "%s %.0f%%\n", labelStyle.Render(fmt.Sprintf("%-14s", "Confidence")), in.Confidence*100)
	if len(in.CulturalDomains) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", "Domains")), strings.Join(in.CulturalDomains, ", "))
	}
	printList(w, "Tags", in.Tags)
	audiences := make([]string, 0, len(in.Audiences))
	for _, a := range in.Audiences {
		audiences = append(audiences, fmt.Sprintf("%s (%.0f%% match)", a.Name, a.Match*100))
	}
	printList(w, "Audiences", audiences)
	names := make([]string, 0, len(in.Entities))
	for _, e := range in.Entities {
		names = append(names, e.Name)
	}
	printList(w, "Related entities", names)
}
