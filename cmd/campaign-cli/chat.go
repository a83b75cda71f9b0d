package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/campaign-intel/internal/assistant"
	"github.com/fpang/campaign-intel/internal/boot"
	"github.com/fpang/campaign-intel/internal/cli"
	"github.com/fpang/campaign-intel/internal/pipeline"
)

var chatReportFlag string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the campaign assistant",
	Long: `Chat opens an assistant session. With --report the session knows the
campaign analysis from a saved run; without it the assistant answers as a
general PR consultant.

In the session:
  /actions        list quick actions
  /action <id>    start a quick action (e.g. /action poster)
  /quit           save the session to history and exit`,
	Args: cobra.NoArgs,
	Run:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatReportFlag, "report", "r", "", "Report JSON written by \"run --out\"")
}

func runChat(cmd *cobra.Command, args []string) {
	var c *assistant.Context
	if chatReportFlag != "" {
		var report pipeline.Report
		if err := cli.ReadJSON(chatReportFlag, &report); err != nil {
			log.Fatal().Err(err).Msg("Failed to read report")
		}
		c = assistant.NewContext(report.Input, report.Analysis, report.Analytics, report.Charts, report.Results)
	}

	svc := services(cmd)
	defer closeServices(svc)
	chatLoop(cmd.Context(), svc, svc.Assistant.Open(c))
}

// chatLoop prints the session so far and reads user turns until /quit, EOF
// or interrupt. The session is closed, and so saved, on the way out.
func chatLoop(ctx context.Context, svc *boot.Services, view assistant.SessionView) {
	md := cli.NewMarkdown(80)
	for _, m := range view.Messages {
		cli.PrintMessage(os.Stdout, md, m)
	}

	defer func() {
		if err := svc.Assistant.Close(context.WithoutCancel(ctx), view.ID); err != nil {
			log.Error().Err(err).Str("session", view.ID).Msg("Failed to save chat session")
			return
		}
		fmt.Printf("\nSession %s saved.\n", view.ID)
	}()

	p := cli.NewPrompter(os.Stdin, os.Stdout)
	for ctx.Err() == nil {
		text, err := p.Line("\nYou", "")
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to read input")
			return
		}
		if text == "" {
			continue
		}

		switch cmd, arg, _ := strings.Cut(text, " "); cmd {
		case "/quit", "/exit":
			return
		case "/actions":
			for _, a := range assistant.Actions() {
				fmt.Printf("  %-12s %s\n", a.ID, a.Description)
			}
		case "/action":
			reply, err := svc.Assistant.QuickAction(view.ID, strings.TrimSpace(arg))
			if err != nil {
				fmt.Println(err)
				continue
			}
			cli.PrintMessage(os.Stdout, md, reply)
		default:
			reply, err := svc.Assistant.Send(ctx, view.ID, text)
			if err != nil {
				fmt.Println(err)
				continue
			}
			cli.PrintMessage(os.Stdout, md, reply)
		}
	}
}
