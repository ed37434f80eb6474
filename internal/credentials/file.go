package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps tokens as string fields of a JSON settings file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Token implements Source. A missing file, or a field that is empty or not a
// string, yields ErrNotSet.
func (s *FileStore) Token(name Name) (string, error) {
	fields, err := s.read()
	if err != nil {
		return "", err
	}

	var value string
	if raw, ok := fields[name.Field()]; ok {
		if err := json.Unmarshal(raw, &value); err != nil {
			value = ""
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s in %s: %w", name.Field(), s.path, ErrNotSet)
	}

	return value, nil
}

// Set writes the token, keeping any other fields already in the file.
func (s *FileStore) Set(name Name, value string) error {
	fields, err := s.read()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name.Field(), err)
	}
	fields[name.Field()] = encoded

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil { //nolint:gosec // settings dir is user-owned
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// read returns the top-level fields of the settings object undecoded, so
// fields of any type survive a Set.
func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	fields := map[string]json.RawMessage{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fields, nil
	}

	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", s.path, err)
	}

	return fields, nil
}
