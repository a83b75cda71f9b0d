package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/cli"
)

var (
	contentBriefFlag string
	contentKindFlag  string

	crisisBriefFlag     string
	crisisSituationFlag string

	competeBriefFlag       string
	competeCompetitorsFlag []string
)

var contentKinds = []analysis.ContentKind{
	analysis.ContentPressRelease,
	analysis.ContentSocialMedia,
	analysis.ContentBlogPost,
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Draft campaign copy for a brief",
	Long: `Content writes one piece of campaign copy for the brief.

Kinds: pressRelease, socialMedia, blogPost`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		kind := analysis.ContentKind(contentKindFlag)
		if !slices.Contains(contentKinds, kind) {
			log.Fatal().Str("kind", contentKindFlag).Msg("Unknown content kind")
		}
		in := loadBrief(contentBriefFlag)
		svc := services(cmd)
		defer closeServices(svc)

		text, err := svc.Analyzer.GenerateContent(cmd.Context(), in, kind)
		if err != nil {
			log.Fatal().Err(err).Msg("Content generation failed")
		}
		printMarkdown(text)
	},
}

var crisisCmd = &cobra.Command{
	Use:   "crisis",
	Short: "Draft a crisis communication plan",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if strings.TrimSpace(crisisSituationFlag) == "" {
			log.Fatal().Msg("--situation is required")
		}
		in := loadBrief(crisisBriefFlag)
		svc := services(cmd)
		defer closeServices(svc)

		text, err := svc.Analyzer.CrisisResponse(cmd.Context(), in, crisisSituationFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Crisis response failed")
		}
		printMarkdown(text)
	},
}

var competeCmd = &cobra.Command{
	Use:   "compete",
	Short: "Analyze the brand against competitors",
	Long: `Compete writes a competitive analysis for the brief. The brand is compared
with the first competitor through Qloo taste overlap when both resolve to
Qloo entities.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(competeCompetitorsFlag) == 0 {
			log.Fatal().Msg("at least one --competitor is required")
		}
		in := loadBrief(competeBriefFlag)
		svc := services(cmd)
		defer closeServices(svc)

		ctx := cmd.Context()
		comparison := svc.Qloo.CompareBrands(ctx, in.BrandName, competeCompetitorsFlag[0], in.Location)
		if comparison != nil {
			fmt.Printf("Taste overlap with %s: %.0f%% across %d tags\n\n",
				competeCompetitorsFlag[0], comparison.OverlapScore*100, comparison.TotalTags)
		}
		text, err := svc.Analyzer.CompetitorAnalysis(ctx, in, competeCompetitorsFlag, comparison)
		if err != nil {
			log.Fatal().Err(err).Msg("Competitor analysis failed")
		}
		printMarkdown(text)
	},
}

func init() {
	contentCmd.Flags().StringVarP(&contentBriefFlag, "brief", "b", "", "Campaign brief JSON file (\"-\" for stdin; prompts when empty)")
	contentCmd.Flags().StringVarP(&contentKindFlag, "kind", "k", string(analysis.ContentPressRelease), "Content kind")

	crisisCmd.Flags().StringVarP(&crisisBriefFlag, "brief", "b", "", "Campaign brief JSON file (\"-\" for stdin; prompts when empty)")
	crisisCmd.Flags().StringVarP(&crisisSituationFlag, "situation", "s", "", "Description of the crisis")

	competeCmd.Flags().StringVarP(&competeBriefFlag, "brief", "b", "", "Campaign brief JSON file (\"-\" for stdin; prompts when empty)")
	competeCmd.Flags().StringSliceVarP(&competeCompetitorsFlag, "competitor", "c", nil, "Competitor brand (repeatable)")
}

func printMarkdown(text string) {
	fmt.Println(cli.NewMarkdown(80).Render(text))
}
