package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/pkg/collections"
)

// Extension is the file extension of stored recordings.
const Extension = ".webm"

// Recording describes a stored recording.
type Recording struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Recordings stores blobs as files under a single directory.
type Recordings struct {
	dir    string
	player Player
	logger *slog.Logger
}

// NewRecordings returns a store rooted at dir. The directory is created on
// first save.
func NewRecordings(dir string, player Player, logger *slog.Logger) *Recordings {
	return &Recordings{dir: dir, player: player, logger: logger}
}

// Dir returns the recordings directory.
func (r *Recordings) Dir() string {
	return r.dir
}

// Path returns the file path used for name.
func (r *Recordings) Path(name string) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", fmt.Errorf("%w: invalid recording name %q", apperr.ErrState, name)
	}

	return filepath.Join(r.dir, clean+Extension), nil
}

// Save writes blob to <dir>/<name>.webm, replacing any existing file.
func (r *Recordings) Save(blob Blob, name string) (string, error) {
	path, err := r.Path(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil { //nolint:gosec // recordings dir is user-owned
		return "", fmt.Errorf("%w: failed to create recordings directory: %w", apperr.ErrIO, err)
	}

	if err := os.WriteFile(path, blob.Data, 0o644); err != nil { //nolint:gosec // recordings are not secret
		return "", fmt.Errorf("%w: failed to write recording %s: %w", apperr.ErrIO, path, err)
	}

	r.logger.Info("Recording saved", "path", path, "bytes", len(blob.Data))

	return path, nil
}

// Load reads a stored recording.
func (r *Recordings) Load(name string) (Blob, error) {
	path, err := r.Path(name)
	if err != nil {
		return Blob{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Blob{}, fmt.Errorf("%w: recording %q", apperr.ErrNotFound, name)
	}
	if err != nil {
		return Blob{}, fmt.Errorf("%w: failed to read recording %s: %w", apperr.ErrIO, path, err)
	}

	return Blob{Data: data, MIMEType: MIMEType}, nil
}

// List returns stored recordings sorted by name. A missing directory is empty.
func (r *Recordings) List() ([]Recording, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Recording{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list recordings: %w", apperr.ErrIO, err)
	}

	files := collections.Filter(entries, func(e os.DirEntry) bool {
		return e.Type().IsRegular() && strings.HasSuffix(e.Name(), Extension)
	})

	recordings := make([]Recording, 0, len(files))
	for _, entry := range files {
		info, err := entry.Info()
		if err != nil {
			r.logger.Warn("Skipping unreadable recording", "name", entry.Name(), "error", err)

			continue
		}

		recordings = append(recordings, Recording{
			Name:     strings.TrimSuffix(entry.Name(), Extension),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].Name < recordings[j].Name
	})

	return recordings, nil
}

// Play loads name and starts playback. It does not wait for playback to end;
// the returned channel closes when it does.
func (r *Recordings) Play(ctx context.Context, name string) (<-chan struct{}, error) {
	blob, err := r.Load(name)
	if err != nil {
		return nil, err
	}

	done, err := r.player.Play(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("failed to play %s: %w", name, err)
	}

	r.logger.Info("Playback started", "name", name)

	return done, nil
}

// Export writes the named recording to out as MP3.
func (r *Recordings) Export(name string, out io.Writer, sampleRate int) error {
	blob, err := r.Load(name)
	if err != nil {
		return err
	}

	if err := EncodeMP3(out, blob, sampleRate); err != nil {
		return fmt.Errorf("%w: failed to export %s: %w", apperr.ErrIO, name, err)
	}

	return nil
}

// SanitizeName makes name safe to use as a single file name inside the
// recordings directory. Characters invalid in paths become hyphens.
func SanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		"\x00", "",
	)

	sanitized := replacer.Replace(strings.TrimSuffix(strings.TrimSpace(name), Extension))
	sanitized = strings.Trim(sanitized, " -.")

	return sanitized
}
