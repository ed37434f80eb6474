// Package catalog supplies the chord and style selection lists.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alkime/sonaris/internal/apperr"
)

// DefaultChords is used when no chords API is configured.
var DefaultChords = []string{
	"C", "C#", "Db", "D", "D#", "Eb", "E", "F", "F#", "Gb", "G", "G#", "Ab", "A", "A#", "Bb", "B",
	"C minor", "C# minor", "D minor", "D# minor", "Eb minor", "E minor", "F minor", "F# minor",
	"G minor", "G# minor", "A minor", "A# minor", "Bb minor", "B minor",
}

// DefaultStyles is used when no chords API is configured.
var DefaultStyles = []string{
	"Pop", "Rock", "Jazz", "Blues", "Folk", "Country", "Funk", "Soul", "R&B", "Hip Hop",
	"Reggae", "Bossa Nova", "Gospel", "Metal", "Punk", "Lo-fi", "Electronic", "Classical",
}

const requestTimeout = 10 * time.Second

// Catalog serves selection lists from a remote API or built-in defaults.
type Catalog struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New returns a catalog. An empty baseURL serves the built-in lists.
func New(baseURL string, logger *slog.Logger) *Catalog {
	return &Catalog{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// Chords returns the ordered chord list.
func (c *Catalog) Chords(ctx context.Context) ([]string, error) {
	if c.baseURL == "" {
		return append([]string(nil), DefaultChords...), nil
	}

	var resp struct {
		Chords []string `json:"chords"`
	}
	if err := c.fetch(ctx, "/chords", &resp); err != nil {
		return nil, err
	}

	return nonNil(resp.Chords), nil
}

// Styles returns the ordered style list.
func (c *Catalog) Styles(ctx context.Context) ([]string, error) {
	if c.baseURL == "" {
		return append([]string(nil), DefaultStyles...), nil
	}

	var resp struct {
		Genres []string `json:"genres"`
	}
	if err := c.fetch(ctx, "/genres", &resp); err != nil {
		return nil, err
	}

	return nonNil(resp.Genres), nil
}

func (c *Catalog) fetch(ctx context.Context, path string, out any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to build request for %s: %w", apperr.ErrProvider, url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch %s: %w", apperr.ErrProvider, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("%w: %s returned %d: %s",
			apperr.ErrProvider, url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %w", apperr.ErrProvider, url, err)
	}

	c.logger.Debug("Fetched catalog list", "url", url)

	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}

	return items
}
