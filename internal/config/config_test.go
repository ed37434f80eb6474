package config_test

import (
	"testing"
	"time"

	"github.com/alkime/sonaris/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"huggingface", "gemini", "anthropic", "ollama"}, cfg.ProviderOrder)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, "openai/gpt-oss-120b:groq", cfg.HuggingFaceModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Minute, cfg.MaxRecording)
}

func TestLoadConfig_ProviderOrderNormalized(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", " Gemini ,OLLAMA")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"gemini", "ollama"}, cfg.ProviderOrder)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		expectError string
	}{
		{
			name:        "zero sample rate",
			cfg:         config.Config{SampleRate: 0, MaxRecording: time.Minute, ProviderOrder: []string{"gemini"}},
			expectError: "SAMPLE_RATE must be positive",
		},
		{
			name:        "zero max recording",
			cfg:         config.Config{SampleRate: 16000, ProviderOrder: []string{"gemini"}},
			expectError: "MAX_RECORDING must be positive",
		},
		{
			name:        "no providers",
			cfg:         config.Config{SampleRate: 16000, MaxRecording: time.Minute},
			expectError: "PROVIDER_ORDER",
		},
		{
			name: "valid",
			cfg:  config.Config{SampleRate: 16000, MaxRecording: time.Minute, ProviderOrder: []string{"gemini"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestBuildCSP(t *testing.T) {
	assert.Contains(t, config.BuildCSP("strict"), "object-src 'none'")
	assert.Contains(t, config.BuildCSP("relaxed"), "'unsafe-inline'")
	assert.Contains(t, config.BuildCSP("relaxed"), "media-src 'self' blob:")
}
