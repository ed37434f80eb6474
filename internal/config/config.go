package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment represents the development environment.
	EnvDevelopment = "development"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage settings. Empty DataDir resolves to the user config dir.
	DataDir string `envconfig:"DATA_DIR"`

	// Provider settings
	ProviderOrder    []string `envconfig:"PROVIDER_ORDER" default:"huggingface,gemini,anthropic,ollama"`
	HuggingFaceURL   string   `envconfig:"HF_BASE_URL" default:"https://router.huggingface.co/v1"`
	HuggingFaceModel string   `envconfig:"HF_MODEL" default:"openai/gpt-oss-120b:groq"`
	GeminiModel      string   `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	AnthropicModel   string   `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-5-20250929"`
	OllamaModel      string   `envconfig:"OLLAMA_MODEL" default:"llama3.1"`

	// Selection lists
	ChordsAPIURL string `envconfig:"CHORDS_API_URL"`

	// Audio settings
	SampleRate   int           `envconfig:"SAMPLE_RATE" default:"16000"`
	MaxRecording time.Duration `envconfig:"MAX_RECORDING" default:"30m"`

	// Error reporting. Disabled when empty.
	SentryDSN string `envconfig:"SENTRY_DSN"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports configuration values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}

	if c.MaxRecording <= 0 {
		return fmt.Errorf("MAX_RECORDING must be positive, got %s", c.MaxRecording)
	}

	if len(c.ProviderOrder) == 0 {
		return fmt.Errorf("PROVIDER_ORDER must name at least one provider")
	}

	for i, name := range c.ProviderOrder {
		c.ProviderOrder[i] = strings.ToLower(strings.TrimSpace(name))
	}

	return nil
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'self'; " +
			"media-src 'self' blob:; " +
			"script-src 'self'; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"media-src 'self' blob:; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'"
}
