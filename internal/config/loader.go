package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CAMPAIGN_QLOO_BASE_URL.
const EnvPrefix = "CAMPAIGN"

// Default values.
const (
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultQlooBaseURL   = "https://hackathon.api.qloo.com"
	DefaultQlooTimeout   = 30 * time.Second
	DefaultHistoryKey    = "chatbot_history"
	DefaultHistoryPath   = ".campaign-history.json"
	DefaultArchivePrefix = "reports"
	DefaultServerPort    = 8080
)

// secretEnv maps config keys to the conventional variable names the keys are
// usually exported under, in addition to the prefixed form.
var secretEnv = map[string]string{
	"gemini.api_key": "GEMINI_API_KEY",
	"openai.api_key": "OPENAI_API_KEY",
	"qloo.api_key":   "QLOO_API_KEY",
}

// Load reads configuration. A .env file is loaded first when one can be found,
// then config.yaml and config.<env>.yaml from the given directories (or
// ./configs and . when none are given), then environment overrides.
func Load(dirs ...string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{"./configs", "."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range secretEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := v.GetString("environment")
	v.SetConfigName("config." + env)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading %s config: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Str("environment", env).Msg("Loaded config file")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", DefaultOpenAIModel)
	v.SetDefault("qloo.base_url", DefaultQlooBaseURL)
	v.SetDefault("qloo.api_key", "")
	v.SetDefault("qloo.timeout", DefaultQlooTimeout)
	v.SetDefault("qloo.concurrency", 1)
	v.SetDefault("qloo.rate_per_second", 0)
	v.SetDefault("history.backend", BackendFile)
	v.SetDefault("history.path", DefaultHistoryPath)
	v.SetDefault("history.key", DefaultHistoryKey)
	v.SetDefault("history.redis_addr", "")
	v.SetDefault("history.redis_password", "")
	v.SetDefault("history.redis_db", 0)
	v.SetDefault("history.dynamo_table", "")
	v.SetDefault("history.ttl", 30*24*time.Hour)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", DefaultArchivePrefix)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("log.level", "info")
}

func normalize(cfg *Config) {
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.History.Backend = strings.ToLower(strings.TrimSpace(cfg.History.Backend))
	cfg.Qloo.BaseURL = strings.TrimRight(cfg.Qloo.BaseURL, "/")
	cfg.Archive.Prefix = strings.Trim(cfg.Archive.Prefix, "/")
	if cfg.Qloo.Concurrency < 1 {
		cfg.Qloo.Concurrency = 1
	}
}

// Validate checks that enumerated settings are known and that each selected
// backend has what it needs. API keys are not required here: Lambda binaries
// fill them from SSM after loading.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.LLM.Provider)
	}

	switch c.History.Backend {
	case BackendMemory:
	case BackendFile:
		if c.History.Path == "" {
			return fmt.Errorf("history.path is required for the file backend")
		}
	case BackendRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("history.redis_addr is required for the redis backend")
		}
	case BackendDynamo:
		if c.History.DynamoTable == "" {
			return fmt.Errorf("history.dynamo_table is required for the dynamo backend")
		}
	default:
		return fmt.Errorf("unknown history.backend %q", c.History.Backend)
	}

	if c.History.Key == "" {
		return fmt.Errorf("history.key is required")
	}
	if c.Qloo.BaseURL == "" {
		return fmt.Errorf("qloo.base_url is required")
	}
	if c.Qloo.RatePerSecond < 0 {
		return fmt.Errorf("qloo.rate_per_second must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// loadEnvFile loads the first .env found in the working directory, its
// parents, or the module root. Existing environment variables win.
func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			log.Debug().Str("path", p).Msg("Loaded .env file")
			return
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
