package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/cli"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved assistant sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := services(cmd)
		defer closeServices(svc)
		records, err := svc.Assistant.History(cmd.Context())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list history")
		}
		cli.PrintHistory(os.Stdout, records)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a saved session's transcript",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := services(cmd)
		defer closeServices(svc)
		rec, err := svc.Assistant.HistoryRecord(cmd.Context(), args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load session")
		}
		if rec == nil {
			log.Fatal().Str("session", args[0]).Msg("Session not found")
		}
		fmt.Printf("%s  %s  %s\n\n", rec.ID, rec.CampaignType, rec.Summary)
		md := cli.NewMarkdown(80)
		for _, m := range rec.Messages {
			cli.PrintMessage(os.Stdout, md, m)
		}
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := services(cmd)
		defer closeServices(svc)
		if err := svc.Assistant.Delete(cmd.Context(), args[0]); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete session")
		}
		fmt.Printf("Deleted %s\n", args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := services(cmd)
		defer closeServices(svc)
		if err := svc.Assistant.Clear(cmd.Context()); err != nil {
			log.Fatal().Err(err).Msg("Failed to clear history")
		}
		fmt.Println("History cleared.")
	},
}

var historyResumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Continue a saved session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := services(cmd)
		defer closeServices(svc)
		view, err := svc.Assistant.Load(cmd.Context(), args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resume session")
		}
		chatLoop(cmd.Context(), svc, view)
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd, historyResumeCmd)
}
