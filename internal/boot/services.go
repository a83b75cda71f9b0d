package boot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/analytics"
	"github.com/fpang/campaign-intel/internal/archive"
	"github.com/fpang/campaign-intel/internal/assistant"
	"github.com/fpang/campaign-intel/internal/config"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/logging"
	"github.com/fpang/campaign-intel/internal/pipeline"
	"github.com/fpang/campaign-intel/internal/planner"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/fpang/campaign-intel/internal/store"
)

// AWSLoader returns the AWS config. It is only called when a configured
// component needs AWS.
type AWSLoader func(ctx context.Context) (aws.Config, error)

// Services are the components every surface is built from.
type Services struct {
	Config *config.Config
	// Generator is nil when no LLM key is configured; every stage then serves
	// its fallback.
	Generator llm.Generator
	Qloo      *qloo.Client
	Analyzer  *analysis.Synthesizer
	History   store.Store
	// Archive is nil unless archive.bucket is set.
	Archive   *archive.S3Archive
	Pipeline  *pipeline.Pipeline
	Assistant *assistant.Assistant
}

// New builds the Services described by cfg and initializes the history
// store. loadAWS may be nil, in which case InitAWS is used.
func New(ctx context.Context, cfg *config.Config, loadAWS AWSLoader) (*Services, error) {
	if loadAWS == nil {
		loadAWS = InitAWS
	}
	awsCfg := onceAWS(loadAWS)

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	history, err := NewHistoryStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	if err := history.Init(ctx); err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("init %s history store: %w", cfg.History.Backend, err)
	}

	var arch *archive.S3Archive
	if cfg.Archive.Enabled() {
		ac, err := awsCfg(ctx)
		if err != nil {
			_ = history.Close()
			return nil, err
		}
		arch = archive.NewS3Archive(s3.NewFromConfig(ac), cfg.Archive.Bucket, cfg.Archive.Prefix)
	}

	if cfg.Qloo.APIKey == "" {
		log.Warn().Msg("Qloo API key not set; every query will fail and analysis will use fallbacks")
	}
	client := qloo.NewClient(cfg.Qloo.APIKey,
		qloo.WithBaseURL(cfg.Qloo.BaseURL),
		qloo.WithTimeout(cfg.Qloo.Timeout),
		qloo.WithRateLimit(cfg.Qloo.RatePerSecond),
	)

	analyzer := analysis.New(gen)
	facets := analytics.New(gen)
	if cfg.Qloo.APIKey != "" {
		facets.WithCulture(client)
	}
	var opts []pipeline.Option
	if arch != nil {
		opts = append(opts, pipeline.WithArchive(arch))
	}
	pipe := pipeline.New(
		planner.New(gen),
		qloo.NewExecutor(client, qloo.WithConcurrency(cfg.Qloo.Concurrency)),
		analyzer,
		facets,
		opts...,
	)

	return &Services{
		Config:    cfg,
		Generator: gen,
		Qloo:      client,
		Analyzer:  analyzer,
		History:   history,
		Archive:   arch,
		Pipeline:  pipe,
		Assistant: assistant.New(gen, history),
	}, nil
}

// NewGenerator builds the configured LLM client, or returns nil when the
// provider's key is not set.
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	if cfg.LLMKey() == "" {
		log.Warn().Str("provider", cfg.LLM.Provider).Msg("LLM API key not set; planner, analysis and analytics will use fallbacks")
		return nil, nil
	}
	gen, err := llm.New(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLMKey(),
		Model:    cfg.LLMModel(),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.LLM.Provider, err)
	}
	return gen, nil
}

// NewHistoryStore returns the store selected by history.backend. The store
// is not yet initialized.
func NewHistoryStore(ctx context.Context, cfg *config.Config, loadAWS AWSLoader) (store.Store, error) {
	h := cfg.History
	switch h.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendFile:
		return store.NewFileStore(h.Path, h.Key), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     h.RedisAddr,
			Password: h.RedisPassword,
			DB:       h.RedisDB,
		})
		return store.NewRedisStore(client, h.Key, h.TTL), nil
	case config.BackendDynamo:
		if loadAWS == nil {
			return nil, errors.New("dynamo history backend needs AWS config")
		}
		ac, err := loadAWS(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewDynamoStore(dynamodb.NewFromConfig(ac), h.DynamoTable, h.Key, h.TTL), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", h.Backend)
	}
}

// onceAWS memoizes load so the AWS config is resolved at most once.
func onceAWS(load AWSLoader) AWSLoader {
	var (
		once sync.Once
		cfg  aws.Config
		err  error
	)
	return func(ctx context.Context) (aws.Config, error) {
		once.Do(func() { cfg, err = load(ctx) })
		return cfg, err
	}
}

// Close flushes and closes the history store.
func (s *Services) Close(ctx context.Context) error {
	flushErr := s.History.Flush(ctx)
	closeErr := s.History.Close()
	return errors.Join(flushErr, closeErr)
}

// Startup returns a startup logger describing s.
func (s *Services) Startup(name string) *logging.StartupLogger {
	cfg := s.Config
	sl := logging.NewStartupLogger(name).
		Store("history", cfg.History.Backend).
		Endpoint("qloo", cfg.Qloo.BaseURL).
		Feature("llm", s.Generator != nil).
		Feature("archive", s.Archive != nil).
		Feature("qlooRateLimit", cfg.Qloo.RatePerSecond > 0).
		Config("environment", cfg.Environment).
		Config("llmProvider", cfg.LLM.Provider).
		Config("llmModel", cfg.LLMModel()).
		Config("qlooConcurrency", strconv.Itoa(cfg.Qloo.Concurrency))
	switch cfg.History.Backend {
	case config.BackendDynamo:
		sl.DynamoTable("history", cfg.History.DynamoTable)
	case config.BackendRedis:
		sl.Endpoint("redis", cfg.History.RedisAddr)
	case config.BackendFile:
		sl.Config("historyPath", cfg.History.Path)
	}
	if s.Archive != nil {
		sl.S3Bucket("archive", cfg.Archive.Bucket)
	}
	return sl
}
