package audio

import (
	"errors"
	"fmt"
	"io"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// DefaultMP3BufferBytes is 4KB = 2048 mono samples = 128ms @ 16kHz.
const DefaultMP3BufferBytes = 4096

// MP3Writer encodes mono S16LE PCM written to it as MP3 frames on out.
// Close must be called to flush the final partial batch.
type MP3Writer struct {
	out       io.Writer
	encoder   *mp3encoder.Encoder
	buffer    []byte
	threshold int
	closed    bool
}

// NewMP3Writer creates an encoder for mono PCM at sampleRate.
func NewMP3Writer(out io.Writer, sampleRate int) (*MP3Writer, error) {
	if out == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	return &MP3Writer{
		out: out,
		// shine-mp3 advances by two channels per pass even in mono, so mono
		// input is encoded as duplicated stereo.
		encoder:   mp3encoder.NewEncoder(sampleRate, 2),
		buffer:    make([]byte, 0, DefaultMP3BufferBytes),
		threshold: DefaultMP3BufferBytes,
	}, nil
}

// Write buffers PCM and encodes whenever the batch threshold is reached.
func (w *MP3Writer) Write(pcm []byte) (int, error) {
	if w.closed {
		return 0, errors.New("mp3 writer closed")
	}

	w.buffer = append(w.buffer, pcm...)
	if len(w.buffer) >= w.threshold {
		if err := w.encodeBatch(); err != nil {
			return 0, err
		}
	}

	return len(pcm), nil
}

// Close encodes any remaining buffered PCM. Safe to call multiple times.
func (w *MP3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.encodeBatch(); err != nil {
		return fmt.Errorf("failed to flush MP3 encoder: %w", err)
	}

	return nil
}

func (w *MP3Writer) encodeBatch() error {
	// keep a trailing odd byte for the next batch
	usable := len(w.buffer) &^ 1
	if usable == 0 {
		return nil
	}

	mono := BytesToInt16(w.buffer[:usable])
	stereo := make([]int16, len(mono)*2)
	for i, sample := range mono {
		stereo[i*2] = sample
		stereo[i*2+1] = sample
	}

	if err := w.encoder.Write(w.out, stereo); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	w.buffer = append(w.buffer[:0], w.buffer[usable:]...)

	return nil
}

// EncodeMP3 writes blob as an MP3 stream to out.
func EncodeMP3(out io.Writer, blob Blob, sampleRate int) error {
	w, err := NewMP3Writer(out, sampleRate)
	if err != nil {
		return err
	}

	if _, err := w.Write(blob.Data); err != nil {
		return err
	}

	return w.Close()
}
