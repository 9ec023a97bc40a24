// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`

	// Provider credentials. Absence of the credential for the selected
	// provider causes a startup-time ConfigError (see SPEC_FULL.md §6).
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	ClaudeAPIKey    string `env:"CLAUDE_API_KEY"`
	ClaudeBaseURL   string `env:"CLAUDE_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	GeminiBaseURL   string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GLMAPIKey       string `env:"GLM_API_KEY"`
	GLMBaseURL      string `env:"GLM_BASE_URL" envDefault:"https://open.bigmodel.cn/api/paas/v4"`

	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	// OpenRouterAPIKey2 is loaded from the environment but nothing reads it:
	// the openrouter adapter authenticates with OpenRouterAPIKey only, and
	// there is no rotation between the two keys.
	OpenRouterAPIKey2 string `env:"OPENROUTER_API_KEY_2"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`

	// DefaultExtractionProvider is the low-cost provider used for S1 Screen
	// and S2 Extract (ai_service.py's "glm" default).
	DefaultExtractionProvider string `env:"EXTRACTION_PROVIDER" envDefault:"glm"`
	// DefaultAnalysisProvider is the heavier provider used for S3 Market and
	// S4 Match, and as S2's cross-provider fallback.
	DefaultAnalysisProvider string `env:"ANALYSIS_PROVIDER" envDefault:"deepseek"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"jobmatch-analyzer"`

	// Pipeline flags.
	ScreeningMode  bool `env:"SCREENING_MODE" envDefault:"true"`
	WorkerCount    int  `env:"WORKER_COUNT" envDefault:"4"`
	MinScoreFilter int  `env:"MIN_SCORE_FILTER" envDefault:"6"`
	// ProgressEvery controls how many processed items elapse between progress events.
	ProgressEvery int `env:"PROGRESS_EVERY" envDefault:"10"`

	// AI Backoff Configuration.
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"180s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	// Timeouts.
	DefaultCallTimeout   time.Duration `env:"DEFAULT_CALL_TIMEOUT" envDefault:"30s"`
	ReasoningCallTimeout time.Duration `env:"REASONING_CALL_TIMEOUT" envDefault:"120s"`
	PerItemTimeout       time.Duration `env:"PER_ITEM_TIMEOUT" envDefault:"45s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAIBackoffConfig returns backoff configuration appropriate for the
// current environment. In test environments, uses much shorter timeouts for
// faster test execution.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 5 * time.Second, 100 * time.Millisecond, 1 * time.Second, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}

// CredentialFor returns the configured API key for a provider id, following
// the env variable names in SPEC_FULL.md §6.
func (c Config) CredentialFor(providerID string) string {
	switch strings.ToLower(providerID) {
	case "deepseek":
		return c.DeepSeekAPIKey
	case "claude":
		return c.ClaudeAPIKey
	case "gemini":
		return c.GeminiAPIKey
	case "openai", "gpt":
		return c.OpenAIAPIKey
	case "glm":
		return c.GLMAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// BaseURLFor returns the configured base URL for a provider id.
func (c Config) BaseURLFor(providerID string) string {
	switch strings.ToLower(providerID) {
	case "deepseek":
		return c.DeepSeekBaseURL
	case "claude":
		return c.ClaudeBaseURL
	case "gemini":
		return c.GeminiBaseURL
	case "openai", "gpt":
		return c.OpenAIBaseURL
	case "glm":
		return c.GLMBaseURL
	case "openrouter":
		return c.OpenRouterBaseURL
	default:
		return ""
	}
}
