// Package config loads the service configuration from the environment
// (optionally seeded from a .env file) and validates it.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration marks configuration problems. They are fatal at startup and
// never retried.
var ErrConfiguration = errors.New("configuration error")

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultPort         = 3333
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultRetryDelay   = 3 * time.Second
	DefaultModelTimeout = 60 * time.Second
)

// ModelConfig holds the credential and model name for one provider.
type ModelConfig struct {
	APIKey string
	Model  string `validate:"required"`
}

type Config struct {
	Provider string `validate:"oneof=gemini openai"`
	Gemini   ModelConfig
	OpenAI   ModelConfig

	Port      int    `validate:"min=1,max=65535"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	// RetryDelay is the pause before the strict second pass of an analysis.
	RetryDelay time.Duration `validate:"min=0s"`
	// ModelTimeout bounds a single model attempt. Zero disables it.
	ModelTimeout time.Duration `validate:"min=0s"`
}

// Load reads configuration from:
// 1. defaults
// 2. a .env file in the working directory, if present
// 3. the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
		Gemini: ModelConfig{
			APIKey: strings.TrimSpace(v.GetString("gemini_api_key")),
			Model:  v.GetString("gemini_model"),
		},
		OpenAI: ModelConfig{
			APIKey: strings.TrimSpace(v.GetString("openai_api_key")),
			Model:  v.GetString("openai_model"),
		},
		Port:         v.GetInt("port"),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		LogFormat:    strings.ToLower(v.GetString("log_format")),
		RetryDelay:   v.GetDuration("coach_retry_delay"),
		ModelTimeout: v.GetDuration("model_timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Credentials are not checked here; the
// model client does that once when it is constructed.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// Model returns the provider settings selected by Provider.
func (c *Config) Model() ModelConfig {
	if c.Provider == ProviderOpenAI {
		return c.OpenAI
	}
	return c.Gemini
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("openai_model", DefaultOpenAIModel)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("coach_retry_delay", DefaultRetryDelay)
	v.SetDefault("model_timeout", DefaultModelTimeout)
}
