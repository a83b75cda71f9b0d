package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/cli"
	"github.com/fpang/campaign-intel/internal/qloo"
)

var (
	trendingTypeFlag     string
	trendingLocationFlag string
	trendingLimitFlag    int

	insightsBrandsFlag   []string
	insightsLocationFlag string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the configured services",
	Long: `Status reports which services are configured and checks that the Qloo
API is reachable with the configured key. It exits non-zero when Qloo is
unreachable.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := services(cmd)
		defer closeServices(svc)

		fmt.Printf("LLM:      %s (%s)\n", enabled(svc.Generator != nil), svc.Config.LLM.Provider)
		fmt.Printf("History:  %s\n", svc.Config.History.Backend)
		fmt.Printf("Archive:  %s\n", enabled(svc.Archive != nil))

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		start := time.Now()
		if err := svc.Qloo.Ping(ctx); err != nil {
			fmt.Printf("Qloo:     unreachable (%v)\n", err)
			closeServices(svc)
			os.Exit(1)
		}
		fmt.Printf("Qloo:     ok (%s)\n", time.Since(start).Round(time.Millisecond))
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List this week's trending Qloo entities",
	Long: `Trending lists the entities of one type trending on Qloo this week,
optionally filtered to a location.

Examples:
  campaign-cli trending
  campaign-cli trending --type urn:entity:artist --location Berlin --limit 20`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if trendingLimitFlag < 1 {
			log.Fatal().Int("limit", trendingLimitFlag).Msg("--limit must be positive")
		}
		svc := services(cmd)
		defer closeServices(svc)

		entities := svc.Qloo.Trending(cmd.Context(), trendingTypeFlag, qloo.TrendingOptions{
			Limit:    trendingLimitFlag,
			Location: trendingLocationFlag,
		})
		cli.PrintEntities(os.Stdout, "Trending "+trendingTypeFlag, entities)
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show the cultural taste profile around brands",
	Long: `Insights resolves each brand to its Qloo entity and prints the tags,
domains and related entities of their shared taste profile.

Examples:
  campaign-cli insights --brand Acme
  campaign-cli insights --brand Acme --brand Globex --location Berlin`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(insightsBrandsFlag) == 0 {
			log.Fatal().Msg("at least one --brand is required")
		}
		svc := services(cmd)
		defer closeServices(svc)

		cli.PrintInsights(os.Stdout, svc.Qloo.BrandInsights(cmd.Context(), insightsBrandsFlag, insightsLocationFlag))
	},
}

func init() {
	trendingCmd.Flags().StringVarP(&trendingTypeFlag, "type", "t", qloo.TypeBrand, "Qloo entity type URN")
	trendingCmd.Flags().StringVarP(&trendingLocationFlag, "location", "l", "", "Location filter")
	trendingCmd.Flags().IntVarP(&trendingLimitFlag, "limit", "n", 10, "Number of entities")

	insightsCmd.Flags().StringSliceVarP(&insightsBrandsFlag, "brand", "b", nil, "Brand name (repeatable)")
	insightsCmd.Flags().StringVarP(&insightsLocationFlag, "location", "l", "", "Location to bias toward")
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
