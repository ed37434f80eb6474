package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/internal/audio"
	"github.com/alkime/sonaris/internal/config"
)

const progressInterval = time.Second

// RecordCmd records a voice sketch into the recordings library.
type RecordCmd struct {
	Name        string        `arg:"" help:"Recording name"`
	MaxDuration time.Duration `flag:"" optional:"" help:"Stop automatically after this long (default MAX_RECORDING)"`
}

// Run executes the record command.
func (c *RecordCmd) Run() error {
	name := audio.SanitizeName(c.Name)
	if name == "" {
		return fmt.Errorf("invalid recording name %q", c.Name)
	}

	a, err := setup(func(cfg *config.Config) {
		if c.MaxDuration > 0 {
			cfg.MaxRecording = c.MaxDuration
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Recording... press Enter or Space to stop.") //nolint:forbidigo // CLI prompt

	blob, err := record(ctx, a.Session, catchStopSignals(ctx), os.Stdout, a.Config.MaxRecording)
	if err != nil {
		return err
	}

	path, err := a.Recordings.Save(blob, name)
	if err != nil {
		return fmt.Errorf("failed to save recording: %w", err)
	}

	fmt.Printf("\nSaved %s (%.1fs)\n", path, blob.Duration(a.Config.SampleRate)) //nolint:forbidigo // CLI output

	return nil
}

// capture is the part of audio.Session used while recording.
type capture interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (audio.Blob, error)
	TakeExpired() (audio.Blob, bool)
	Status() audio.Status
	Elapsed() time.Duration
	Level() float64
}

// record runs a capture until stopC fires or the session stops itself at
// its max duration, printing progress to out.
func record(
	ctx context.Context,
	session capture,
	stopC <-chan struct{},
	out io.Writer,
	maxDuration time.Duration,
) (audio.Blob, error) {
	if err := session.Start(ctx); err != nil {
		return audio.Blob{}, fmt.Errorf("failed to start recording: %w", err)
	}

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopC:
			slog.Info("received stop signal")

			return finish(ctx, session)
		case <-ticker.C:
			if session.Status() != audio.StatusRecording {
				return finish(ctx, session)
			}

			fmt.Fprintf(out, "\r%s %s", //nolint:errcheck // progress line
				formatDuration(session.Elapsed(), maxDuration),
				levelBar(session.Level(), levelBarWidth))
		}
	}
}

func finish(ctx context.Context, session capture) (audio.Blob, error) {
	blob, err := session.Stop(ctx)
	if errors.Is(err, apperr.ErrState) {
		if expired, ok := session.TakeExpired(); ok {
			return expired, nil
		}
	}

	if err != nil {
		return audio.Blob{}, fmt.Errorf("failed to stop recording: %w", err)
	}

	return blob, nil
}

// formatDuration formats elapsed against maxDuration as HH:MM:SS with a
// percentage, bold once 90% of the limit is used.
func formatDuration(elapsed, maxDuration time.Duration) string {
	formatTime := func(d time.Duration) string {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60

		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}

	if maxDuration <= 0 {
		return formatTime(elapsed)
	}

	percent := int(float64(elapsed) / float64(maxDuration) * 100)
	text := fmt.Sprintf("%s / %s (%d%%)", formatTime(elapsed), formatTime(maxDuration), percent)

	if percent >= 90 {
		return fmt.Sprintf("\033[1m%s\033[0m", text)
	}

	return text
}

const levelBarWidth = 20

// levelBar renders an input level in [0, 1] as a fixed-width meter.
func levelBar(level float64, width int) string {
	level = min(max(level, 0), 1)
	filled := int(level * float64(width))

	return "[" + strings.Repeat("#", filled) + strings.Repeat(" ", width-filled) + "]"
}

// catchStopSignals listens for a few things:
//   - OS signals: SIGINT, SIGTERM
//   - Context's Done channel
//   - User inputting newline or space into stdin.
func catchStopSignals(ctx context.Context) <-chan struct{} {
	stopC := make(chan struct{})
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)

	stdinC := make(chan struct{})

	// os.Stdin.Read cannot be cancelled; this goroutine ends with the process.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}

			if buf[0] == '\n' || buf[0] == ' ' {
				close(stdinC)

				return
			}
		}
	}()

	go func() {
		defer close(stopC)
		defer signal.Stop(sigC)

		select {
		case <-ctx.Done():
		case <-sigC:
		case <-stdinC:
		}
	}()

	return stopC
}

// PlayCmd plays a saved recording and waits for it to finish.
type PlayCmd struct {
	Name string `arg:"" help:"Recording name"`
}

// Run executes the play command.
func (c *PlayCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done, err := a.Recordings.Play(ctx, c.Name)
	if err != nil {
		return err
	}

	select {
	case <-done:
	case <-catchStopSignals(ctx):
		cancel()
		<-done
	}

	return nil
}

// RecordingsCmd lists the recordings library.
type RecordingsCmd struct{}

// Run executes the recordings command.
func (c *RecordingsCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	recs, err := a.Recordings.List()
	if err != nil {
		return fmt.Errorf("failed to list recordings: %w", err)
	}

	if len(recs) == 0 {
		fmt.Printf("No recordings in %s\n", a.Recordings.Dir()) //nolint:forbidigo // CLI output

		return nil
	}

	for _, rec := range recs {
		//nolint:forbidigo // CLI output
		fmt.Printf("%-30s %8.1f KB  %s\n",
			rec.Name, float64(rec.Size)/1024, rec.Modified.Format(time.DateTime))
	}

	return nil
}

// ExportCmd converts a saved recording to MP3.
type ExportCmd struct {
	Name   string `arg:"" help:"Recording name"`
	Output string `arg:"" type:"path" help:"Destination .mp3 file"`
}

// Run executes the export command.
func (c *ExportCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	if err := exportFile(a.Recordings, c.Name, c.Output, a.Config.SampleRate); err != nil {
		return err
	}

	slog.Info("Exported recording", "name", c.Name, "path", c.Output)

	return nil
}

type exporter interface {
	Export(name string, out io.Writer, sampleRate int) error
}

// exportFile encodes into a temp file next to output and renames it into
// place, so a failed export leaves any existing output untouched.
func exportFile(rec exporter, name, output string, sampleRate int) error {
	tmp, err := os.CreateTemp(filepath.Dir(output), ".sonaris-export-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", output, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := rec.Export(name, tmp, sampleRate); err != nil {
		_ = tmp.Close()

		return err
	}

	if err := tmp.Chmod(0o644); err != nil { //nolint:gosec // exported audio is not secret
		_ = tmp.Close()

		return fmt.Errorf("failed to set permissions on %s: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating audio devices...")

	devices, err := audio.ListDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"kind", dev.Kind,
			"isDefault", dev.IsDefault,
			"formats", dev.Formats,
		)
	}

	return nil
}
