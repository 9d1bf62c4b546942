// Package config loads runtime configuration from the environment.
//
// A .env file in the working directory is honored when present, which keeps
// local development close to how the service runs in production. All values
// have workable defaults except the provider credentials; a missing API key
// does not block startup, it puts the mediator into degraded mode.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// CallbackURL is the public base URL the telephony vendor posts
	// webhooks to. Required only when triggering outbound calls.
	CallbackURL string `envconfig:"CALLBACK_URL"`

	RedisURL string `envconfig:"REDIS_URL"`

	KnowledgeDir string `envconfig:"KNOWLEDGE_DIR" default:"./knowledge_base"`
	SessionDir   string `envconfig:"SESSION_DIR" default:"./sessions"`
	AudioDir     string `envconfig:"AUDIO_DIR" default:"./audio_cache"`

	Provider        string `envconfig:"GENERATION_PROVIDER" default:"openai"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	Persona  string `envconfig:"PERSONA"`
	Greeting string `envconfig:"GREETING"`

	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"10s"`
	SynthesisTimeout  time.Duration `envconfig:"SYNTHESIS_TIMEOUT" default:"15s"`

	SessionRetention time.Duration `envconfig:"SESSION_RETENTION" default:"24h"`
	StaleTimeout     time.Duration `envconfig:"CALL_STALE_TIMEOUT" default:"5m"`
	AudioRetention   time.Duration `envconfig:"AUDIO_RETENTION" default:"1h"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from the environment, overlaying a local .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown generation provider %q", c.Provider)
	}
	if c.SessionRetention <= 0 {
		return fmt.Errorf("session retention must be positive, got %s", c.SessionRetention)
	}
	return nil
}

// ProviderKey returns the API key for the configured generation provider.
func (c *Config) ProviderKey() string {
	if c.Provider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// Degraded reports whether the service will run without a reply generator
// because the configured provider has no credentials.
func (c *Config) Degraded() bool {
	return c.ProviderKey() == ""
}
