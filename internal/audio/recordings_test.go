package audio_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	played []audio.Blob
	err    error
}

func (p *fakePlayer) Play(_ context.Context, blob audio.Blob) (<-chan struct{}, error) {
	if p.err != nil {
		return nil, p.err
	}

	p.played = append(p.played, blob)
	done := make(chan struct{})
	close(done)

	return done, nil
}

func newStore(t *testing.T) (*audio.Recordings, *fakePlayer) {
	t.Helper()

	player := &fakePlayer{}
	dir := filepath.Join(t.TempDir(), "recordings")

	return audio.NewRecordings(dir, player, slog.Default()), player
}

func TestRecordings_SaveLoad(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	blob := audio.Blob{Data: []byte("pcm-bytes"), MIMEType: audio.MIMEType}

	path, err := store.Save(blob, "verse idea")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "verse idea.webm"), path)

	loaded, err := store.Load("verse idea")
	require.NoError(t, err)
	assert.Equal(t, blob, loaded)
}

func TestRecordings_SaveOverwrites(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	_, err := store.Save(audio.Blob{Data: []byte("old")}, "take")
	require.NoError(t, err)
	_, err = store.Save(audio.Blob{Data: []byte("new")}, "take")
	require.NoError(t, err)

	loaded, err := store.Load("take")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), loaded.Data)
}

func TestRecordings_LoadMissing(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	_, err := store.Load("nothing")

	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecordings_SaveFailure(t *testing.T) {
	t.Parallel()

	// a regular file where the directory should be
	parent := t.TempDir()
	blocker := filepath.Join(parent, "recordings")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store := audio.NewRecordings(blocker, &fakePlayer{}, slog.Default())
	_, err := store.Save(audio.Blob{Data: []byte("a")}, "take")

	require.ErrorIs(t, err, apperr.ErrIO)
}

func TestRecordings_NamesCannotEscape(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	path, err := store.Save(audio.Blob{Data: []byte("a")}, "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, store.Dir(), filepath.Dir(path))

	loaded, err := store.Load("../../etc/passwd")
	require.NoError(t, err, "load sanitizes identically")
	assert.Equal(t, []byte("a"), loaded.Data)

	_, err = store.Save(audio.Blob{}, "../..")
	require.ErrorIs(t, err, apperr.ErrState)
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "chorus", want: "chorus"},
		{in: "a/b\\c:d", want: "a-b-c-d"},
		{in: " -draft- ", want: "draft"},
		{in: "take.webm", want: "take"},
		{in: "..", want: ""},
		{in: "what?*", want: "what"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, audio.SanitizeName(tt.in), tt.in)
	}
}

func TestRecordings_List(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	empty, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, empty, "missing directory lists empty")

	_, err = store.Save(audio.Blob{Data: []byte("bb")}, "b-side")
	require.NoError(t, err)
	_, err = store.Save(audio.Blob{Data: []byte("a")}, "a-side")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o600))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-side", list[0].Name)
	assert.Equal(t, int64(1), list[0].Size)
	assert.Equal(t, "b-side", list[1].Name)
}

func TestRecordings_Play(t *testing.T) {
	t.Parallel()

	store, player := newStore(t)
	_, err := store.Save(audio.Blob{Data: []byte("tune")}, "tune")
	require.NoError(t, err)

	done, err := store.Play(context.Background(), "tune")
	require.NoError(t, err)
	<-done

	require.Len(t, player.played, 1)
	assert.Equal(t, []byte("tune"), player.played[0].Data)

	_, err = store.Play(context.Background(), "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	player.err = errors.New("no output device")
	_, err = store.Play(context.Background(), "tune")
	require.Error(t, err)
}

func sine(samples int) []byte {
	out := make([]int16, samples)
	for i := range out {
		out[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}

	return pcm(out...)
}

func TestRecordings_Export(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	_, err := store.Save(audio.Blob{Data: sine(16000)}, "hum")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, store.Export("hum", &out, 16000))
	assert.Positive(t, out.Len())

	err = store.Export("missing", &out, 16000)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMP3Writer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w, err := audio.NewMP3Writer(&out, 16000)
	require.NoError(t, err)

	data := sine(8000)
	for chunk := range slices.Chunk(data, 333) {
		n, err := w.Write(chunk)
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Positive(t, out.Len())

	_, err = w.Write([]byte{0, 0})
	assert.Error(t, err)

	_, err = audio.NewMP3Writer(&out, 0)
	assert.Error(t, err)
	_, err = audio.NewMP3Writer(nil, 16000)
	assert.Error(t, err)
}
