package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alkime/sonaris/internal/workflow"
)

// GenerateCmd runs one pass of the creation workflow.
type GenerateCmd struct {
	Key      string `flag:"" required:"" help:"Musical key, e.g. 'C major'"`
	Style    string `flag:"" required:"" help:"Style or genre, e.g. 'Bossa Nova'"`
	Provider string `flag:"" optional:"" help:"Force a provider (huggingface, gemini, anthropic, ollama)"`
	Remove   []int  `flag:"" optional:"" help:"Drop keywords by index after generating (repeatable)"`
	JSON     bool   `flag:"" help:"Print the final workflow state as JSON"`
}

// Run executes the generate command.
func (c *GenerateCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	m := a.Workflow(c.Provider)

	if err := m.ConfirmKey(c.Key); err != nil {
		return fmt.Errorf("failed to confirm key: %w", err)
	}

	if err := m.Submit(context.Background(), c.Style); err != nil {
		return fmt.Errorf("failed to generate: %w", err)
	}

	if err := removeKeywords(m, c.Remove); err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(os.Stdout, m.Snapshot())
	}

	printState(os.Stdout, m.Snapshot())

	return nil
}

// removeKeywords applies removals from the highest index down so that each
// index refers to the list as it was generated.
func removeKeywords(m *workflow.Machine, indexes []int) error {
	sorted := slices.Clone(indexes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, idx := range slices.Backward(sorted) {
		if err := m.RemoveKeyword(idx); err != nil {
			return fmt.Errorf("failed to remove keyword %d: %w", idx, err)
		}
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}

	return nil
}

func printState(w io.Writer, state workflow.State) {
	fmt.Fprintf(w, "Key:   %s\nStyle: %s\n\n", state.Key, state.Style)

	if state.Progression != nil {
		fmt.Fprintf(w, "Progression:\n  %s\n\n", state.Progression.Text)
	}

	if len(state.Keywords) == 0 {
		fmt.Fprintln(w, "Keywords: none")

		return
	}

	fmt.Fprintln(w, "Keywords:")
	for i, kw := range state.Keywords {
		fmt.Fprintf(w, "  [%d] %s\n", i, kw)
	}
}

// ChordsCmd prints the key list.
type ChordsCmd struct{}

// Run executes the chords command.
func (c *ChordsCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	chords, err := a.Catalog.Chords(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list chords: %w", err)
	}

	fmt.Println(strings.Join(chords, "\n")) //nolint:forbidigo // CLI output

	return nil
}

// StylesCmd prints the style list.
type StylesCmd struct{}

// Run executes the styles command.
func (c *StylesCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	styles, err := a.Catalog.Styles(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list styles: %w", err)
	}

	fmt.Println(strings.Join(styles, "\n")) //nolint:forbidigo // CLI output

	return nil
}
