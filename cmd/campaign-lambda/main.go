// Package main provides the Lambda entry point for the campaign API.
//
// It serves the same handler as campaign-web behind API Gateway (HTTP API,
// payload v2). API keys come from the environment, or from SSM Parameter
// Store when unset.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/fpang/campaign-intel/internal/api"
	"github.com/fpang/campaign-intel/internal/boot"
	"github.com/fpang/campaign-intel/internal/config"
	"github.com/fpang/campaign-intel/internal/logging"
)

var svc *boot.Services

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	awsCfg, err := boot.InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	ssmClient := ssm.NewFromConfig(awsCfg)
	if err := boot.LoadSecret(ctx, ssmClient, boot.QlooKey); err != nil {
		log.Fatal().Err(err).Msg("Failed to load Qloo API key")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	llmKey := boot.GeminiKey
	if cfg.LLM.Provider == config.ProviderOpenAI {
		llmKey = boot.OpenAIKey
	}
	if err := boot.LoadSecret(ctx, ssmClient, llmKey); err != nil {
		log.Fatal().Err(err).Str("provider", cfg.LLM.Provider).Msg("Failed to load LLM API key")
	}
	// The key may have arrived from SSM after the first load.
	if cfg, err = config.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.InitLevel(cfg.Log.Level)

	svc, err = boot.New(ctx, cfg, func(context.Context) (aws.Config, error) { return awsCfg, nil })
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	svc.Startup("campaign-lambda").
		CommitHash(commitHash).
		BuildTime(buildTime).
		SSMParam("qlooKey", boot.QlooKey.Param()).
		SSMParam("llmKey", llmKey.Param()).
		Config("region", awsCfg.Region).
		Config("function", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(api.FromServices(svc).Handler())
	lambda.Start(adapter.ProxyWithContext)
}
