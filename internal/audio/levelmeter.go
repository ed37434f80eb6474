package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// LevelMeter keeps the most recent samples of a live capture so callers can
// display an input level. Writes come from one goroutine; reads may be
// concurrent.
type LevelMeter struct {
	samples []int16
	head    int
	count   int
	mu      sync.RWMutex
}

// NewLevelMeter creates a meter over a window of capacity samples.
func NewLevelMeter(capacity int) *LevelMeter {
	if capacity < 1 {
		capacity = 1
	}

	return &LevelMeter{samples: make([]int16, capacity)}
}

// Write records S16LE PCM bytes, overwriting the oldest samples when full.
func (m *LevelMeter) Write(pcm []byte) {
	samples := BytesToInt16(pcm)
	if len(samples) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	capacity := len(m.samples)
	for _, sample := range samples {
		m.samples[m.head] = sample
		m.head = (m.head + 1) % capacity

		if m.count < capacity {
			m.count++
		}
	}
}

// Recent returns up to n most recent samples in chronological order.
func (m *LevelMeter) Recent(n int) []int16 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.count == 0 || n <= 0 {
		return nil
	}

	n = min(n, m.count)
	capacity := len(m.samples)
	start := (m.head - n + capacity) % capacity

	result := make([]int16, n)
	for i := range n {
		result[i] = m.samples[(start+i)%capacity]
	}

	return result
}

// Peak returns the largest absolute amplitude in the window, scaled to [0, 1].
func (m *LevelMeter) Peak() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var peak int32
	for i := range m.count {
		v := int32(m.samples[i])
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}

	return math.Min(float64(peak)/math.MaxInt16, 1)
}

// RMS returns the root-mean-square level of the window, scaled to [0, 1].
func (m *LevelMeter) RMS() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.count == 0 {
		return 0
	}

	var sum float64
	for i := range m.count {
		v := float64(m.samples[i]) / math.MaxInt16
		sum += v * v
	}

	return math.Min(math.Sqrt(sum/float64(m.count)), 1)
}

// Reset empties the window.
func (m *LevelMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.head, m.count = 0, 0
}

// BytesToInt16 converts S16LE (signed 16-bit little-endian) bytes to int16 samples.
// A trailing odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	numSamples := len(data) / BytesPerSample
	if numSamples == 0 {
		return nil
	}

	samples := make([]int16, numSamples)
	for i := range numSamples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*BytesPerSample:])) //nolint:gosec // reinterpreting bits
	}

	return samples
}
