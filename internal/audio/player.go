package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/gen2brain/malgo"
)

// Player plays a blob on the host output device. Play returns once playback
// has started; the returned channel closes when it ends or ctx is done.
type Player interface {
	Play(ctx context.Context, blob Blob) (<-chan struct{}, error)
}

type devicePlayer struct {
	conf *DeviceConfig
}

// NewPlayer returns a malgo-backed player for PCM in the given format.
func NewPlayer(conf *DeviceConfig) Player {
	return &devicePlayer{conf: conf}
}

func (p *devicePlayer) Play(ctx context.Context, blob Blob) (<-chan struct{}, error) {
	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize malgo context: %w", apperr.ErrPermission, err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Playback)
	devCnf.Playback.Format = p.conf.Format
	devCnf.Playback.Channels = uint32(p.conf.Channels) //nolint:gosec // small positive channel count
	devCnf.SampleRate = uint32(p.conf.SampleRate)      //nolint:gosec // validated positive

	reader := bytes.NewReader(blob.Data)
	finished := make(chan struct{})
	var once sync.Once

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n, _ := io.ReadFull(reader, out)
			if n < len(out) {
				clear(out[n:])
				once.Do(func() { close(finished) })
			}
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callbacks)
	if err != nil {
		uninitializeContext(mgCtx)

		return nil, fmt.Errorf("%w: failed to initialize playback device: %w", apperr.ErrPermission, err)
	}

	if err := mgDevice.Start(); err != nil {
		mgDevice.Uninit()
		uninitializeContext(mgCtx)

		return nil, fmt.Errorf("%w: failed to start playback device: %w", apperr.ErrPermission, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		select {
		case <-finished:
		case <-ctx.Done():
		}

		mgDevice.Uninit()
		uninitializeContext(mgCtx)
	}()

	return done, nil
}
