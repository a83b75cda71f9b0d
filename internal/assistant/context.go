package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/analytics"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/rs/zerolog/log"
)

// Context is the campaign state a session answers questions about. A nil
// Context, or one without analysis and analytics, gets general guidance.
type Context struct {
	Input    campaign.Input
	Analysis *analysis.CampaignAnalysis
	// Source is the provider that wrote the analysis, or "fallback".
	Source        string
	QlooSuccesses int
	Analytics     *analytics.Analytics
	Charts        *analytics.Charts
}

// NewContext assembles a Context from a completed run.
func NewContext(in campaign.Input, a analysis.Result, an analytics.Analytics, charts analytics.Charts, results []qloo.Result) *Context {
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	analysisCopy := a.Analysis
	return &Context{
		Input:         in,
		Analysis:      &analysisCopy,
		Source:        a.Source,
		QlooSuccesses: succeeded,
		Analytics:     &an,
		Charts:        &charts,
	}
}

// HasData reports whether both analysis and analytics are present.
func (c *Context) HasData() bool {
	return c != nil && c.Analysis != nil && c.Analytics != nil
}

func (c *Context) audience() string {
	if c.Analysis != nil && c.Analysis.Overview.TargetAudience.Primary != "" {
		return c.Analysis.Overview.TargetAudience.Primary
	}
	return "your audience"
}

func (c *Context) budget() string {
	if c.Input.Budget == "" {
		return "your"
	}
	return string(c.Input.Budget)
}

func (c *Context) provider() string {
	if c.Source == "" || c.Source == analysis.SourceFallback {
		return "AI"
	}
	return c.Source
}

// analysisSnapshot is what a saved session keeps as its analysis data. The
// campaign brief travels with the analysis so a reloaded session can answer
// questions about it.
type analysisSnapshot struct {
	Campaign      campaign.Input             `json:"campaignData"`
	Analysis      *analysis.CampaignAnalysis `json:"analysis,omitempty"`
	Source        string                     `json:"source,omitempty"`
	QlooSuccesses int                        `json:"qlooSuccesses,omitempty"`
}

type analyticsSnapshot struct {
	Facets *analytics.Analytics `json:"facets,omitempty"`
	Charts *analytics.Charts    `json:"charts,omitempty"`
}

func (c *Context) analyticsJSON() string {
	return indentJSON(analyticsSnapshot{Facets: c.Analytics, Charts: c.Charts})
}

// snapshot encodes c for a history record. A nil Context yields no data.
func (c *Context) snapshot() (analysisData, analyticsData json.RawMessage, err error) {
	if c == nil {
		return nil, nil, nil
	}
	analysisData, err = json.Marshal(analysisSnapshot{
		Campaign:      c.Input,
		Analysis:      c.Analysis,
		Source:        c.Source,
		QlooSuccesses: c.QlooSuccesses,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode analysis context: %w", err)
	}
	if c.Analytics != nil || c.Charts != nil {
		analyticsData, err = json.Marshal(analyticsSnapshot{Facets: c.Analytics, Charts: c.Charts})
		if err != nil {
			return nil, nil, fmt.Errorf("encode analytics context: %w", err)
		}
	}
	return analysisData, analyticsData, nil
}

// restoreContext decodes the context saved with a history record.
func restoreContext(analysisData, analyticsData json.RawMessage) (*Context, error) {
	if len(analysisData) == 0 {
		return nil, nil
	}
	var as analysisSnapshot
	if err := json.Unmarshal(analysisData, &as); err != nil {
		return nil, fmt.Errorf("decode analysis context: %w", err)
	}
	c := &Context{
		Input:         as.Campaign,
		Analysis:      as.Analysis,
		Source:        as.Source,
		QlooSuccesses: as.QlooSuccesses,
	}
	if len(analyticsData) > 0 {
		var ns analyticsSnapshot
		if err := json.Unmarshal(analyticsData, &ns); err != nil {
			return nil, fmt.Errorf("decode analytics context: %w", err)
		}
		c.Analytics, c.Charts = ns.Facets, ns.Charts
	}
	return c, nil
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode assistant prompt context")
		return "{}"
	}
	return string(data)
}
