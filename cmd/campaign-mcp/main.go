package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "campaign-mcp",
	Short: "MCP server exposing campaign analysis tools",
	Long: `Campaign MCP serves the campaign tools to MCP clients over stdio:

  plan_queries       plan Qloo queries for a brief
  analyze_campaign   run the full analysis for a brief
  generate_content   write campaign copy for a brief
  compare_brands     Qloo taste overlap between two brands
  trending_entities  this week's trending Qloo entities
  cultural_insights  taste profile around a set of brands

Logs go to stderr; stdout carries the protocol.

Examples:
  campaign-mcp
  CAMPAIGN_LOG_LEVEL=debug campaign-mcp`,
	Args: cobra.NoArgs,
	Run:  runMain,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := cli.Init(ctx, cli.Build{
		Name:       "campaign-mcp",
		CommitHash: commitHash,
		BuildTime:  buildTime,
	}, false)
	defer func() {
		if err := svc.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to close history store")
		}
	}()

	server := newServer(&tools{
		runner:  svc.Pipeline,
		writer:  svc.Analyzer,
		culture: svc.Qloo,
	}, commitHash)

	log.Info().Msg("Serving MCP over stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("MCP server stopped")
	}
}
