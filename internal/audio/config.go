package audio

import (
	"github.com/gen2brain/malgo"
)

const (
	// DefaultSampleRate is 16kHz mono, enough for voice memos.
	DefaultSampleRate = 16000
	// DefaultChannels is mono.
	DefaultChannels = 1
	// BytesPerSample is the S16LE sample width.
	BytesPerSample = 2
)

// DeviceConfig describes the PCM format of a capture or playback device.
type DeviceConfig struct {
	Format     malgo.FormatType
	Channels   int
	SampleRate int
}

// NewDeviceConfig returns a mono S16LE config at the given rate.
func NewDeviceConfig(sampleRate int) *DeviceConfig {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return &DeviceConfig{
		Format:     malgo.FormatS16,
		Channels:   DefaultChannels,
		SampleRate: sampleRate,
	}
}
