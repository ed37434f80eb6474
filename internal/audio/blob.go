// Package audio captures, stores and plays back audio memos.
//
// Captured audio is S16LE PCM at the session sample rate. Blobs are tagged
// with the audio/webm media type used by the recordings store.
package audio

import "fmt"

// MIMEType is the media type of every stored recording.
const MIMEType = "audio/webm"

// ContentType is the media type describing the bytes actually stored: mono
// linear PCM (RFC 2586). Stored files use it when served over HTTP.
func ContentType(sampleRate int) string {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return fmt.Sprintf("audio/L16;rate=%d;channels=%d", sampleRate, DefaultChannels)
}

// Blob is a finalized recording.
type Blob struct {
	Data     []byte
	MIMEType string
}

// Duration returns the playback length in seconds of a mono S16LE blob.
func (b Blob) Duration(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}

	return float64(len(b.Data)/BytesPerSample) / float64(sampleRate)
}
