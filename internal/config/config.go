package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names a completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

const (
	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultTimeout     = 60 * time.Second
	defaultPort        = "8080"
	defaultCORSOrigin  = "http://localhost:8081"
)

// ConfigurationError is returned when the process cannot start because a
// required setting is missing or malformed.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// Config holds the configuration for the application.
type Config struct {
	Provider Provider
	APIKey   string
	// BaseURL overrides the OpenAI endpoint, e.g. for a local OpenAI-compatible server.
	BaseURL string
	Model   string
	// Timeout bounds a single completion call.
	Timeout time.Duration

	Port        string
	CORSOrigins []string
}

// LoadDotEnv loads variables from the given .env file, overriding values
// already present in the process environment. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Overload(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := Provider(strings.ToLower(os.Getenv("COMPLETION_PROVIDER")))
	if provider == "" {
		provider = ProviderOpenAI
	}

	cfg := &Config{
		Provider:    provider,
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:       os.Getenv("COMPLETION_MODEL"),
		Timeout:     defaultTimeout,
		Port:        os.Getenv("PORT"),
		CORSOrigins: splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
	}

	switch provider {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.APIKey == "" {
			return nil, &ConfigurationError{Msg: "OPENAI_API_KEY environment variable not set"}
		}
		if cfg.Model == "" {
			cfg.Model = defaultOpenAIModel
		}
	case ProviderGemini:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.APIKey == "" {
			return nil, &ConfigurationError{Msg: "GEMINI_API_KEY environment variable not set"}
		}
		if cfg.Model == "" {
			cfg.Model = defaultGeminiModel
		}
	default:
		return nil, &ConfigurationError{Msg: fmt.Sprintf("unknown COMPLETION_PROVIDER %q", provider)}
	}

	if raw := os.Getenv("COMPLETION_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("invalid COMPLETION_TIMEOUT %q", raw)}
		}
		cfg.Timeout = d
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{defaultCORSOrigin}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
