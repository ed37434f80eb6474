package credentials_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/sonaris/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFileStore_MissingFile(t *testing.T) {
	store := credentials.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))

	_, err := store.Token(credentials.HuggingFace)

	assert.ErrorIs(t, err, credentials.ErrNotSet)
}

func TestFileStore_ReadsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"apiToken":"hf-123","geminiApiKey":"  "}`), 0o600))

	store := credentials.NewFileStore(path)

	token, err := store.Token(credentials.HuggingFace)
	require.NoError(t, err)
	assert.Equal(t, "hf-123", token)

	_, err = store.Token(credentials.Gemini)
	assert.ErrorIs(t, err, credentials.ErrNotSet, "blank field counts as unset")

	_, err = store.Token(credentials.Anthropic)
	assert.ErrorIs(t, err, credentials.ErrNotSet)
}

func TestFileStore_SetPreservesOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))

	store := credentials.NewFileStore(path)
	require.NoError(t, store.Set(credentials.Anthropic, "sk-ant"))

	token, err := store.Token(credentials.Anthropic)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", token)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "dark"`)
	assert.Contains(t, string(data), `"anthropicApiKey": "sk-ant"`)
}

func TestFileStore_SetCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "settings.json")
	store := credentials.NewFileStore(path)

	require.NoError(t, store.Set(credentials.Ollama, "http://localhost:11434"))

	token, err := store.Token(credentials.Ollama)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", token)
}

func TestFileStore_MixedFieldTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"apiToken":"hf-abc","darkMode":true,"volume":0.8,"window":{"w":800},"geminiApiKey":42}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store := credentials.NewFileStore(path)

	token, err := store.Token(credentials.HuggingFace)
	require.NoError(t, err)
	assert.Equal(t, "hf-abc", token)

	_, err = store.Token(credentials.Gemini)
	require.ErrorIs(t, err, credentials.ErrNotSet, "non-string token field counts as unset")

	require.NoError(t, store.Set(credentials.Gemini, "g"))

	token, err = store.Token(credentials.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "g", token)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"darkMode": true`)
	assert.Contains(t, string(data), `"volume": 0.8`)
	assert.Contains(t, string(data), `"w": 800`)
	assert.Contains(t, string(data), `"apiToken": "hf-abc"`)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := credentials.NewFileStore(path).Token(credentials.Gemini)

	require.Error(t, err)
	assert.NotErrorIs(t, err, credentials.ErrNotSet)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store := credentials.NewKeyringStore()

	_, err := store.Token(credentials.Gemini)
	require.ErrorIs(t, err, credentials.ErrNotSet)

	require.NoError(t, store.Set(credentials.Gemini, "g-key"))

	token, err := store.Token(credentials.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "g-key", token)
}

type staticSource map[credentials.Name]string

func (s staticSource) Token(name credentials.Name) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}

	return "", credentials.ErrNotSet
}

type brokenSource struct{}

func (brokenSource) Token(credentials.Name) (string, error) {
	return "", errors.New("keychain locked")
}

func TestChain(t *testing.T) {
	chain := credentials.Chain{
		staticSource{credentials.Gemini: "from-file"},
		staticSource{credentials.Gemini: "from-keychain", credentials.Anthropic: "ant"},
	}

	token, err := chain.Token(credentials.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "from-file", token, "earlier source wins")

	token, err = chain.Token(credentials.Anthropic)
	require.NoError(t, err)
	assert.Equal(t, "ant", token)

	_, err = chain.Token(credentials.Ollama)
	assert.ErrorIs(t, err, credentials.ErrNotSet)

	assert.True(t, credentials.IsSet(chain, credentials.Gemini))
	assert.False(t, credentials.IsSet(chain, credentials.HuggingFace))
}

func TestChain_ReportsSourceFailure(t *testing.T) {
	chain := credentials.Chain{brokenSource{}, staticSource{credentials.Gemini: "ok"}}

	token, err := chain.Token(credentials.Gemini)
	require.NoError(t, err)
	assert.Equal(t, "ok", token)

	_, err = chain.Token(credentials.Anthropic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keychain locked")
}

func TestParse(t *testing.T) {
	name, err := credentials.Parse(" Gemini ")
	require.NoError(t, err)
	assert.Equal(t, credentials.Gemini, name)

	_, err = credentials.Parse("openai")
	assert.Error(t, err)

	assert.Equal(t, "apiToken", credentials.HuggingFace.Field())
	assert.Equal(t, "ollamaBaseUrl", credentials.Ollama.Field())
}
