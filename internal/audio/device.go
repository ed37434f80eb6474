package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/sonaris/pkg/collections"
	"github.com/gen2brain/malgo"
)

// DataPacket is one callback's worth of S16LE PCM.
type DataPacket = []byte

// Device is a host capture device.
type Device interface {
	// CaptureInto initializes the underlying device. Once started, every
	// captured packet is copied and sent to dataC.
	CaptureInto(ctx context.Context, dataC chan<- DataPacket) error

	// Start starts the audio device.
	Start(ctx context.Context) error

	// Stop stops the audio device and returns once no further packets will
	// be delivered. It is a no-op on an unallocated device.
	Stop(ctx context.Context) error

	// IsStarted returns whether the audio device is currently started.
	IsStarted() bool

	// Dealloc frees the underlying device.
	Dealloc(ctx context.Context)
}

type device struct {
	conf *DeviceConfig

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

// NewDevice returns a malgo-backed capture device.
func NewDevice(conf *DeviceConfig) Device {
	return &device{conf: conf}
}

func (d *device) CaptureInto(_ context.Context, dataC chan<- DataPacket) error {
	if dataC == nil {
		return fmt.Errorf("data channel is nil. unable to allocate device")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = d.conf.Format
	devCnf.Capture.Channels = uint32(d.conf.Channels) //nolint:gosec // small positive channel count
	devCnf.SampleRate = uint32(d.conf.SampleRate)     //nolint:gosec // validated positive

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// malgo reuses the samples buffer between callbacks.
			dataC <- append(make([]byte, 0, len(samples)), samples...)
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callbacks)
	if err != nil {
		uninitializeContext(mgCtx)

		return fmt.Errorf("failed to initialize malgo capture device: %w", err)
	}

	d.mgCtx, d.mgDevice = mgCtx, mgDevice

	return nil
}

func (d *device) Start(_ context.Context) error {
	if d.mgDevice == nil {
		return fmt.Errorf("device nil. have you called CaptureInto()?")
	}

	if d.mgDevice.IsStarted() {
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(_ context.Context) error {
	if d.mgDevice == nil {
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) IsStarted() bool {
	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) Dealloc(_ context.Context) {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

// Info describes a host audio device.
type Info struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	IsDefault bool     `json:"isDefault"`
	Formats   []string `json:"formats"`
}

// ListDevices enumerates host capture and playback devices.
func ListDevices(_ context.Context) ([]Info, error) {
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	var infos []Info
	for _, kind := range []struct {
		typ  malgo.DeviceType
		name string
	}{{malgo.Capture, "capture"}, {malgo.Playback, "playback"}} {
		devices, err := devCtx.Devices(kind.typ)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s devices: %w", kind.name, err)
		}

		infos = append(infos, collections.Apply(devices, func(mdi malgo.DeviceInfo) Info {
			return toInfo(kind.name, mdi)
		})...)
	}

	return infos, nil
}

func toInfo(kind string, mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}

	return Info{
		Name:      mdi.Name(),
		Kind:      kind,
		IsDefault: mdi.IsDefault != 0,
		Formats:   formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
