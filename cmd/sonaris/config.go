package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alkime/sonaris/internal/credentials"
)

// ConfigCmd groups credential subcommands.
type ConfigCmd struct {
	SetToken SetTokenCmd `cmd:"" name:"set-token" help:"Store a provider credential"`
	List     ListCmd     `cmd:"" help:"Show which providers are configured"`
}

// SetTokenCmd stores a provider credential in settings.json or the keychain.
type SetTokenCmd struct {
	Provider string `arg:"" enum:"huggingface,gemini,anthropic,ollama" help:"Provider name"`
	Token    string `arg:"" help:"API token (Ollama: server base URL)"`
	Keychain bool   `flag:"" help:"Store in the system keychain instead of settings.json"`
}

// Run executes the set-token command.
func (c *SetTokenCmd) Run() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("token cannot be empty")
	}

	name, err := credentials.Parse(c.Provider)
	if err != nil {
		return fmt.Errorf("invalid provider: %w", err)
	}

	a, err := setup()
	if err != nil {
		return err
	}

	store, where := credentials.Store(a.Files), a.Dir.SettingsPath()
	if c.Keychain {
		store = a.Keyring
		where = "system keychain"
	}

	if err := store.Set(name, strings.TrimSpace(c.Token)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	fmt.Printf("%s credential stored in %s\n", name, where) //nolint:forbidigo // CLI output

	return nil
}

// ListCmd shows which providers have credentials.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run() error {
	a, err := setup()
	if err != nil {
		return err
	}

	listCredentials(os.Stdout, a.Tokens(), a.Registry.Order())

	return nil
}

func listCredentials(w io.Writer, src credentials.Source, order []string) {
	allSet := true

	for _, name := range credentials.All() {
		if credentials.IsSet(src, name) {
			fmt.Fprintf(w, "%s: configured\n", name)
		} else {
			fmt.Fprintf(w, "%s: not set\n", name)
			allSet = false
		}
	}

	fmt.Fprintf(w, "\nProvider order: %s\n", strings.Join(order, ", "))

	if !allSet {
		fmt.Fprintln(w, "Run 'sonaris config set-token <provider> <token>' to configure.")
	}
}
