package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fpang/campaign-intel/internal/llm"
)

func welcome(c *Context) string {
	if !c.HasData() {
		return `Hello! I'm your AI PR Campaign Assistant. I can help you with general PR campaign guidance while you build your campaign.

I can help you with:
• Campaign planning - Best practices for PR campaigns
• Budget guidance - Typical costs for different campaign types
• Strategy advice - Effective PR strategies and approaches
• Target audience - How to identify and reach your audience
• Channel selection - Best platforms for different campaigns
• Content ideas - Types of content that work well
• Timeline planning - How long campaigns typically take
• Risk management - Common challenges and solutions

**Quick Actions Available:**
Use the quick actions to generate campaign materials, or ask me anything about PR campaigns in general!`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello! I'm your AI PR Campaign Assistant with access to the complete Qloo & %s analysis!\n\n", c.provider())
	b.WriteString("**Complete Data Available:**\n")
	fmt.Fprintf(&b, "• **Campaign Details**: %s campaign for %s in %s\n", c.Input.TargetScope, c.Input.BrandName, c.Input.Location)
	fmt.Fprintf(&b, "• **Qloo API Data**: %d successful cultural intelligence responses\n", c.QlooSuccesses)
	b.WriteString("• **Analysis**: Complete AI-generated strategy, implementation, and recommendations\n")
	fmt.Fprintf(&b, "• **Analytics**: %d data visualizations\n", len(c.Analytics.Facets()))
	fmt.Fprintf(&b, "• **Key Insights**: %d cultural insights\n", len(c.Analysis.KeyFindings()))
	fmt.Fprintf(&b, "• **Strategic Recommendations**: %d data-driven recommendations\n\n", len(c.Analysis.ImmediateRecommendations()))
	b.WriteString(`**I can help you with:**
• **Data-Driven Content** - Generate content based on exact Qloo cultural insights
• **Strategic Planning** - Using the complete analysis and recommendations
`)
	fmt.Fprintf(&b, "• **Budget Optimization** - Based on your %s budget and analysis\n", c.budget())
	b.WriteString(`• **Audience Targeting** - Leveraging exact demographic and psychographic data
• **Performance Analysis** - Interpreting analytics with full context
• **Cultural Intelligence** - Using Qloo API data for cultural relevance
• **Implementation Guidance** - Based on complete strategy and timeline analysis

**Quick Actions Available:**
Use the quick actions to generate specific campaign materials, or ask me anything about your complete analysis!`)
	return b.String()
}

// errorReply converts a generation failure into the text shown in place of
// the model's answer.
func errorReply(provider string, err error) string {
	switch llm.KindOf(err) {
	case llm.KindAPIKey:
		if provider == "" {
			provider = "LLM"
		}
		return fmt.Sprintf("API Key Error: Please check your %s API key configuration.", provider)
	case llm.KindQuota:
		return "Rate Limit: Too many requests. Please wait a moment and try again."
	case llm.KindNetwork:
		return "Network Error: Please check your internet connection and try again."
	case llm.KindTimeout:
		return "Timeout: The request took too long. Please try again."
	}

	msg := "Unknown error occurred"
	var le *llm.Error
	if errors.As(err, &le) && le.Message != "" {
		msg = le.Message
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return "Error: " + msg + ". Please try again."
}
