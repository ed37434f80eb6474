// Package app builds the sonaris components from configuration. Both the CLI
// and the HTTP server start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/sonaris/internal/appdir"
	"github.com/alkime/sonaris/internal/audio"
	"github.com/alkime/sonaris/internal/catalog"
	"github.com/alkime/sonaris/internal/config"
	"github.com/alkime/sonaris/internal/credentials"
	"github.com/alkime/sonaris/internal/provider"
	"github.com/alkime/sonaris/internal/workflow"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Dir        appdir.Dir
	Files      *credentials.FileStore
	Keyring    *credentials.KeyringStore
	Registry   *provider.Registry
	Catalog    *catalog.Catalog
	Recordings *audio.Recordings
	Session    *audio.Session
}

// New resolves the data directory and constructs every component. Audio
// devices are not opened until a session starts or a recording plays.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	dir, err := appdir.Resolve(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	if err := dir.Prep(); err != nil {
		return nil, err
	}

	deviceConf := audio.NewDeviceConfig(cfg.SampleRate)

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Dir:     dir,
		Files:   credentials.NewFileStore(dir.SettingsPath()),
		Keyring: credentials.NewKeyringStore(),
		Registry: provider.NewRegistry(provider.Settings{
			Order:          cfg.ProviderOrder,
			HFBaseURL:      cfg.HuggingFaceURL,
			HFModel:        cfg.HuggingFaceModel,
			GeminiModel:    cfg.GeminiModel,
			AnthropicModel: cfg.AnthropicModel,
			OllamaModel:    cfg.OllamaModel,
		}, logger),
		Catalog:    catalog.New(cfg.ChordsAPIURL, logger),
		Recordings: audio.NewRecordings(dir.RecordingsPath(), audio.NewPlayer(deviceConf), logger),
		Session: audio.NewSession(
			func() audio.Device { return audio.NewDevice(deviceConf) },
			audio.WithMaxDuration(cfg.MaxRecording),
			audio.WithSampleRate(cfg.SampleRate),
			audio.WithSessionLogger(logger),
		),
	}

	logger.Debug("app initialized", "dataDir", dir, "providerOrder", a.Registry.Order())

	return a, nil
}

// Tokens returns the credential lookup chain: the settings file first, then
// the system keychain.
func (a *App) Tokens() credentials.Chain {
	return credentials.Chain{a.Files, a.Keyring}
}

// Resolver picks a backend for each submission. An empty name selects the
// first configured provider in order; otherwise that provider is forced.
// Credentials are read on every call so newly stored tokens take effect
// without a restart.
func (a *App) Resolver(name string) workflow.ResolveFunc {
	return func(ctx context.Context) (workflow.Generator, error) {
		var (
			backend *provider.Backend
			err     error
		)

		if name == "" {
			backend, err = a.Registry.Select(ctx, a.Tokens())
		} else {
			backend, err = a.Registry.Get(ctx, a.Tokens(), name)
		}

		if err != nil {
			return nil, err
		}

		return backend, nil
	}
}

// Workflow creates a creation workflow resolving backends by name.
func (a *App) Workflow(name string) *workflow.Machine {
	return workflow.New(a.Resolver(name), workflow.WithLogger(a.Logger))
}
