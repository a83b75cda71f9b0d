package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/fpang/campaign-intel/internal/api"
	"github.com/fpang/campaign-intel/internal/cli"
)

// CLI flags
var (
	portFlag        int
	validateKeyFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "campaign-web",
	Short: "HTTP API for campaign analysis and the campaign assistant",
	Long: `Campaign Web serves the campaign pipeline, the assistant and chat history
over HTTP, plus Prometheus metrics on /metrics.

The port defaults to server.port from configuration (CAMPAIGN_SERVER_PORT).

Examples:
  campaign-web
  campaign-web --port 9090
  campaign-web --validate-key`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.Flags().BoolVar(&validateKeyFlag, "validate-key", false, "Check the LLM API key with a test call at startup")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	svc := cli.Init(ctx, cli.Build{
		Name:       "campaign-web",
		CommitHash: commitHash,
		BuildTime:  buildTime,
	}, validateKeyFlag)

	if portFlag != 0 {
		svc.Config.Server.Port = portFlag
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.FromServices(svc).Handler())

	srv := &http.Server{
		Addr:         svc.Config.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Server shutdown incomplete")
		}
	}()

	log.Info().Int("port", svc.Config.Server.Port).Msg("Starting web server")
	fmt.Printf("\n  Campaign API: http://localhost:%d/api/health\n\n", svc.Config.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	if err := svc.Close(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to close history store")
	}
}
