package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"advisor/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	AI            AIConfig
	Search        SearchConfig
	Advisor       AdvisorConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"financial-advisor-multiagent"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"1.0.0"`
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`

	// Full pipeline runs four sequential model calls, so the write
	// timeout has to cover the slowest realistic request.
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
}

type AIConfig struct {
	ClaudeKey       string        `envconfig:"CLAUDE_API_KEY"`
	OpenAIKey       string        `envconfig:"OPENAI_API_KEY"`
	DeepSeekKey     string        `envconfig:"DEEPSEEK_API_KEY"`
	DefaultProvider string        `envconfig:"DEFAULT_AI_PROVIDER" default:"claude"`
	DefaultModel    string        `envconfig:"DEFAULT_AI_MODEL" default:"claude-3-7-sonnet-20250219"`
	RequestTimeout  time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`
	ReqPerMinute    float64       `envconfig:"AI_REQ_PER_MINUTE" default:"60"`
	Burst           int           `envconfig:"AI_RATE_BURST" default:"6"`
}

type SearchConfig struct {
	Region         string        `envconfig:"SEARCH_REGION" default:"us-en"`
	MaxResults     int           `envconfig:"SEARCH_MAX_RESULTS" default:"10"`
	RequestTimeout time.Duration `envconfig:"SEARCH_REQUEST_TIMEOUT" default:"15s"`
	ReqPerMinute   float64       `envconfig:"SEARCH_REQ_PER_MINUTE" default:"30"`
	Burst          int           `envconfig:"SEARCH_RATE_BURST" default:"3"`
}

// AdvisorConfig carries the orchestration-layer budgets.
type AdvisorConfig struct {
	// TokenCap is the conservative per-agent-call response budget.
	TokenCap int `envconfig:"ADVISOR_TOKEN_CAP" default:"2000"`

	// HandoffLimit bounds any stage output embedded in a downstream prompt.
	HandoffLimit int `envconfig:"ADVISOR_HANDOFF_LIMIT" default:"2000"`

	// MaxPromptLength bounds the inbound user query.
	MaxPromptLength int `envconfig:"ADVISOR_MAX_PROMPT_LENGTH" default:"5000"`

	// LookbackDays is the default market research window.
	LookbackDays int `envconfig:"ADVISOR_LOOKBACK_DAYS" default:"7"`

	// MaxToolRounds bounds the model-driven tool loop per agent call.
	MaxToolRounds int `envconfig:"ADVISOR_MAX_TOOL_ROUNDS" default:"6"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
