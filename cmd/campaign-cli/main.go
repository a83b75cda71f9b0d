package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/boot"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/cli"
)

var validateKeyFlag bool

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "campaign-cli",
	Short: "Culture-aware marketing campaign analysis",
	Long: `Campaign CLI turns a campaign brief into a cultural-intelligence report.

A language model plans Qloo taste queries for the brief, the queries run
concurrently, and the results are synthesized into a campaign analysis,
three analytics facets and chart data. Reports can then be discussed with
the campaign assistant, whose sessions are saved to history.

Without an LLM key every stage serves its fallback content.

Examples:
  campaign-cli run                         # Interactive brief
  campaign-cli run --brief acme.json --out report.json
  campaign-cli run --brief - --json < acme.json
  campaign-cli plan --brief acme.json
  campaign-cli chat --report report.json
  campaign-cli history list
  campaign-cli content --brief acme.json --kind pressRelease
  campaign-cli compete --brief acme.json --competitor Globex
  campaign-cli trending --location Berlin
  campaign-cli insights --brand Acme
  campaign-cli status`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&validateKeyFlag, "validate-key", false, "Check the LLM API key with a test call before running")
	rootCmd.AddCommand(runCmd, planCmd, chatCmd, historyCmd, contentCmd, crisisCmd, competeCmd,
		statusCmd, trendingCmd, insightsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func services(cmd *cobra.Command) *boot.Services {
	return cli.Init(cmd.Context(), cli.Build{
		Name:       "campaign-cli",
		CommitHash: commitHash,
		BuildTime:  buildTime,
	}, validateKeyFlag)
}

// closeServices flushes history. It runs after interactive sessions end.
func closeServices(svc *boot.Services) {
	if err := svc.Close(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to close history store")
	}
}

// loadBrief reads the brief at path, or asks for one interactively when
// path is empty.
func loadBrief(path string) campaign.Input {
	if path != "" {
		in, err := cli.ReadBrief(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Invalid campaign brief")
		}
		return in
	}
	in, err := cli.NewPrompter(os.Stdin, os.Stderr).Brief()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read campaign brief")
	}
	return in
}
