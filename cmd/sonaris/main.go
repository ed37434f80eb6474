package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/alkime/sonaris/internal/app"
	"github.com/alkime/sonaris/internal/config"
	"github.com/alkime/sonaris/internal/logger"
)

// CLI defines the sonaris command structure.
type CLI struct {
	Generate   GenerateCmd   `cmd:"" help:"Generate a chord progression and keywords for a key and style"`
	Chords     ChordsCmd     `cmd:"" help:"List selectable keys"`
	Styles     StylesCmd     `cmd:"" help:"List selectable styles"`
	Record     RecordCmd     `cmd:"" help:"Record from the default microphone"`
	Play       PlayCmd       `cmd:"" help:"Play a saved recording"`
	Recordings RecordingsCmd `cmd:"" help:"List saved recordings"`
	Export     ExportCmd     `cmd:"" help:"Export a recording to MP3"`
	Devices    DevicesCmd    `cmd:"" help:"List available audio devices"`
	Config     ConfigCmd     `cmd:"" help:"Manage provider credentials"`
}

// setup loads configuration and wires the app. configure may adjust the
// loaded config before components are built.
func setup(configure ...func(*config.Config)) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	for _, fn := range configure {
		fn(cfg)
	}

	log := logger.SetupCLILogger(cfg)

	a, err := app.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}

	return a, nil
}

func main() {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("sonaris"),
		kong.Description("Chord progressions, lyric keywords and voice sketches."),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
