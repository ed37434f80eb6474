package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alkime/sonaris/internal/apperr"
)

// captureInUse guards the single host input stream across all sessions.
var captureInUse atomic.Bool

// Status is the lifecycle state of a Session.
type Status int

const (
	StatusIdle Status = iota
	StatusRecording
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRecording:
		return "recording"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DeviceFactory opens a fresh capture device for each recording.
type DeviceFactory func() Device

// Session records one memo at a time from a capture device.
type Session struct {
	mu        sync.Mutex
	newDevice DeviceFactory
	status    Status
	dev       Device
	dataC     chan DataPacket
	result    chan []byte
	blob      *Blob
	startedAt time.Time
	timer     *time.Timer
	gen       uint64
	expired   bool

	captured    atomic.Int64
	meter       *LevelMeter
	sampleRate  int
	maxDuration time.Duration
	logger      *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMaxDuration stops the recording automatically after d. The blob is
// then available from Blob.
func WithMaxDuration(d time.Duration) SessionOption {
	return func(s *Session) {
		s.maxDuration = d
	}
}

// WithSampleRate sets the capture rate, which sizes the level meter window
// to a tenth of a second.
func WithSampleRate(rate int) SessionOption {
	return func(s *Session) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates an idle session.
func NewSession(newDevice DeviceFactory, opts ...SessionOption) *Session {
	s := &Session{
		newDevice:  newDevice,
		sampleRate: DefaultSampleRate,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.meter = NewLevelMeter(s.sampleRate / 10)

	return s
}

// Start opens the capture device and begins collecting audio. It fails with
// ErrBusy if any session in the process is already recording and with
// ErrPermission if the device cannot be opened.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusRecording {
		return fmt.Errorf("%w: session already recording", apperr.ErrBusy)
	}

	if !captureInUse.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: audio input in use by another session", apperr.ErrBusy)
	}

	dev := s.newDevice()
	dataC := make(chan DataPacket, 64)

	if err := dev.CaptureInto(ctx, dataC); err != nil {
		dev.Dealloc(ctx)
		captureInUse.Store(false)

		return fmt.Errorf("%w: failed to open audio input: %w", apperr.ErrPermission, err)
	}

	if err := dev.Start(ctx); err != nil {
		dev.Dealloc(ctx)
		captureInUse.Store(false)

		return fmt.Errorf("%w: failed to start audio input: %w", apperr.ErrPermission, err)
	}

	s.dev = dev
	s.dataC = dataC
	s.result = make(chan []byte, 1)
	s.blob = nil
	s.expired = false
	s.captured.Store(0)
	s.meter.Reset()
	s.status = StatusRecording
	s.startedAt = time.Now()
	s.gen++

	go s.collect(dataC, s.result)

	if s.maxDuration > 0 {
		gen := s.gen
		s.timer = time.AfterFunc(s.maxDuration, func() { s.expire(gen) })
	}

	s.logger.Info("Recording started")

	return nil
}

// collect owns the chunk list until dataC is closed.
func (s *Session) collect(dataC <-chan DataPacket, result chan<- []byte) {
	var chunks bytes.Buffer

	for packet := range dataC {
		chunks.Write(packet)
		s.captured.Add(int64(len(packet)))
		s.meter.Write(packet)
	}

	result <- chunks.Bytes()
}

// Stop stops the device, drains pending audio and finalizes the blob. It
// fails fast with ErrState when the session is not recording.
func (s *Session) Stop(ctx context.Context) (Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopLocked(ctx)
}

func (s *Session) stopLocked(ctx context.Context) (Blob, error) {
	if s.status != StatusRecording {
		return Blob{}, fmt.Errorf("%w: session is %s, not recording", apperr.ErrState, s.status)
	}

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if err := s.dev.Stop(ctx); err != nil {
		s.logger.Warn("Failed to stop audio input cleanly", "error", err)
	}
	s.dev.Dealloc(ctx)
	close(s.dataC)

	data := <-s.result
	captureInUse.Store(false)

	s.dev, s.dataC, s.result = nil, nil, nil
	s.status = StatusStopped
	s.blob = &Blob{Data: data, MIMEType: MIMEType}

	s.logger.Info("Recording stopped",
		"bytes", len(data),
		"elapsed", time.Since(s.startedAt).Round(time.Millisecond))

	return s.copyBlob(), nil
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.status != StatusRecording {
		return
	}

	s.logger.Info("Max recording duration reached", "max", s.maxDuration)

	if _, err := s.stopLocked(context.Background()); err != nil {
		s.logger.Error("Failed to stop expired recording", "error", err)

		return
	}

	s.expired = true
}

// TakeExpired returns the recording stopped by the max duration timer, once.
func (s *Session) TakeExpired() (Blob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expired || s.blob == nil {
		return Blob{}, false
	}

	s.expired = false

	return s.copyBlob(), true
}

// Blob returns the recording finalized by the last Stop.
func (s *Session) Blob() (Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blob == nil {
		return Blob{}, fmt.Errorf("%w: no completed recording", apperr.ErrState)
	}

	return s.copyBlob(), nil
}

func (s *Session) copyBlob() Blob {
	return Blob{
		Data:     append([]byte(nil), s.blob.Data...),
		MIMEType: s.blob.MIMEType,
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// BytesCaptured returns the PCM bytes collected by the current or last recording.
func (s *Session) BytesCaptured() int64 {
	return s.captured.Load()
}

// Level returns the recent peak input level in [0, 1].
func (s *Session) Level() float64 {
	return s.meter.Peak()
}

// Elapsed returns how long the current recording has been running.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRecording {
		return 0
	}

	return time.Since(s.startedAt)
}
