package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "sonaris"

// KeyringStore keeps tokens in the system keychain.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a keychain-backed store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: serviceName}
}

// Token implements Source.
func (s *KeyringStore) Token(name Name) (string, error) {
	value, err := keyring.Get(s.service, string(name))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%s in keychain: %w", name, ErrNotSet)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", name, err)
	}

	if value == "" {
		return "", fmt.Errorf("%s in keychain: %w", name, ErrNotSet)
	}

	return value, nil
}

// Set stores a token in the system keychain.
func (s *KeyringStore) Set(name Name, value string) error {
	if err := keyring.Set(s.service, string(name), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", name, err)
	}

	return nil
}
