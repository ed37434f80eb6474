package app_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alkime/sonaris/internal/app"
	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/internal/config"
	"github.com/alkime/sonaris/internal/credentials"
	"github.com/alkime/sonaris/internal/provider"
	"github.com/alkime/sonaris/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newApp(t *testing.T) *app.App {
	t.Helper()
	keyring.MockInit()

	//nolint:exhaustruct // only the fields the app reads
	cfg := &config.Config{
		DataDir:       t.TempDir(),
		ProviderOrder: provider.DefaultOrder,
		SampleRate:    16000,
		MaxRecording:  time.Minute,
	}

	a, err := app.New(cfg, slog.Default())
	require.NoError(t, err)

	return a
}

func TestNew_PreparesDataDir(t *testing.T) {
	a := newApp(t)

	info, err := os.Stat(a.Dir.RecordingsPath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, a.Dir.RecordingsPath(), a.Recordings.Dir())
}

func TestResolver_NoCredentials(t *testing.T) {
	a := newApp(t)

	_, err := a.Resolver("")(context.Background())
	require.ErrorIs(t, err, apperr.ErrAuth)

	_, err = a.Resolver("gemini")(context.Background())
	require.ErrorIs(t, err, apperr.ErrAuth)
}

func TestResolver_PicksUpStoredToken(t *testing.T) {
	a := newApp(t)

	require.NoError(t, a.Files.Set(credentials.Ollama, "http://localhost:11434"))

	gen, err := a.Resolver("")(context.Background())
	require.NoError(t, err)

	backend, ok := gen.(*provider.Backend)
	require.True(t, ok)
	assert.Equal(t, "ollama", backend.Name())
}

func TestResolver_KeyringFallback(t *testing.T) {
	a := newApp(t)

	require.NoError(t, a.Keyring.Set(credentials.Anthropic, "sk-ant"))

	gen, err := a.Resolver("anthropic")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", gen.(*provider.Backend).Name()) //nolint:forcetypeassert // checked by Resolver
}

func TestWorkflow_MissingCredentialEntersError(t *testing.T) {
	a := newApp(t)
	m := a.Workflow("")

	require.NoError(t, m.ConfirmKey("C major"))
	err := m.Submit(context.Background(), "Jazz")

	require.ErrorIs(t, err, apperr.ErrAuth)
	assert.Equal(t, workflow.PhaseError, m.Snapshot().Phase)
}
