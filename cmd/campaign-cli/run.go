package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/assistant"
	"github.com/fpang/campaign-intel/internal/cli"
)

var (
	runBriefFlag string
	runOutFlag   string
	runJSONFlag  bool
	runChatFlag  bool

	planBriefFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full campaign pipeline for a brief",
	Long: `Run plans Qloo queries for the brief, executes them, and prints the
campaign analysis summary. Use --out to keep the full report for a later
chat session, or --chat to start discussing it right away.`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the Qloo queries that would run for a brief",
	Args:  cobra.NoArgs,
	Run:   runPlan,
}

func init() {
	runCmd.Flags().StringVarP(&runBriefFlag, "brief", "b", "", "Campaign brief JSON file (\"-\" for stdin; prompts when empty)")
	runCmd.Flags().StringVarP(&runOutFlag, "out", "o", "", "Write the full report JSON to this file")
	runCmd.Flags().BoolVar(&runJSONFlag, "json", false, "Print the full report as JSON instead of a summary")
	runCmd.Flags().BoolVar(&runChatFlag, "chat", false, "Open an assistant session on the report when done")

	planCmd.Flags().StringVarP(&planBriefFlag, "brief", "b", "", "Campaign brief JSON file (\"-\" for stdin; prompts when empty)")
}

func runRun(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	in := loadBrief(runBriefFlag)
	svc := services(cmd)
	defer closeServices(svc)

	fmt.Fprintf(os.Stderr, "Analyzing %s in %s...\n", in.BrandName, in.Location)
	report, err := svc.Pipeline.Run(ctx, in)
	if err != nil {
		log.Fatal().Err(err).Msg("Campaign analysis failed")
	}

	if runOutFlag != "" {
		if err := cli.WriteJSON(runOutFlag, report); err != nil {
			log.Fatal().Err(err).Msg("Failed to save report")
		}
		log.Info().Str("path", runOutFlag).Str("report", report.ID).Msg("Report saved")
	}

	if runJSONFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
	} else {
		cli.PrintReport(os.Stdout, report)
	}

	if runChatFlag {
		c := assistant.NewContext(report.Input, report.Analysis, report.Analytics, report.Charts, report.Results)
		chatLoop(ctx, svc, svc.Assistant.Open(c))
	}
}

func runPlan(cmd *cobra.Command, args []string) {
	in := loadBrief(planBriefFlag)
	svc := services(cmd)
	defer closeServices(svc)

	plan, err := svc.Pipeline.Plan(cmd.Context(), in)
	if err != nil {
		log.Fatal().Err(err).Msg("Query planning failed")
	}
	fmt.Printf("Planned %d queries (source: %s)\n", len(plan.Descriptors), plan.Source)
	if plan.Reason != "" {
		fmt.Printf("Reason: %s\n", plan.Reason)
	}
	for i, d := range plan.Descriptors {
		params, _ := json.Marshal(d.Parameters)
		fmt.Printf("\n%2d. %s\n    %s\n", i+1, d.Description, params)
	}
}
