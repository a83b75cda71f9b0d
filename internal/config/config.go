// Package config loads service configuration from an optional .env file,
// optional config.yaml / config.<env>.yaml files, and the environment.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for every binary in this module.
type Config struct {
	Environment string        `mapstructure:"environment"`
	LLM         LLMConfig     `mapstructure:"llm"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
	OpenAI      OpenAIConfig  `mapstructure:"openai"`
	Qloo        QlooConfig    `mapstructure:"qloo"`
	History     HistoryConfig `mapstructure:"history"`
	Archive     ArchiveConfig `mapstructure:"archive"`
	Server      ServerConfig  `mapstructure:"server"`
	Log         LogConfig     `mapstructure:"log"`
}

type LLMConfig struct {
	// Provider is "gemini" or "openai".
	Provider string `mapstructure:"provider"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type QlooConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Concurrency is the executor worker count; 1 keeps requests sequential.
	Concurrency int `mapstructure:"concurrency"`
	// RatePerSecond caps outbound requests; 0 disables the limiter.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

type HistoryConfig struct {
	// Backend is one of memory, file, redis, dynamo.
	Backend       string        `mapstructure:"backend"`
	Path          string        `mapstructure:"path"`
	Key           string        `mapstructure:"key"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	DynamoTable   string        `mapstructure:"dynamo_table"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type ArchiveConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// Enabled reports whether reports should be archived to S3.
func (a ArchiveConfig) Enabled() bool { return a.Bucket != "" }

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendDynamo = "dynamo"
)

// LLMKey returns the API key of the configured provider.
func (c *Config) LLMKey() string {
	if c.LLM.Provider == ProviderOpenAI {
		return c.OpenAI.APIKey
	}
	return c.Gemini.APIKey
}

// LLMModel returns the model name of the configured provider.
func (c *Config) LLMModel() string {
	if c.LLM.Provider == ProviderOpenAI {
		return c.OpenAI.Model
	}
	return c.Gemini.Model
}
