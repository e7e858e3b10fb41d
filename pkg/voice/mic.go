package voice

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// Mic captures microphone audio into recording sessions via miniaudio.
type Mic struct {
	logger *slog.Logger

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	session *Session
}

// NewMic initializes the capture backend.
func NewMic() (*Mic, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("voice: init audio context: %w", err)
	}

	return &Mic{
		logger: slog.Default().With("component", "voice.mic"),
		ctx:    ctx,
	}, nil
}

// Start begins capturing into a fresh session.
func (m *Mic) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return ErrAlreadyRecording
	}

	session := NewSession(SampleRate)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = Channels
	deviceConfig.SampleRate = SampleRate
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			// Append ignores chunks after finalization.
			_ = session.Append(input)
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("voice: init capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("voice: start capture: %w", err)
	}

	m.device = device
	m.session = session
	m.logger.Debug("recording started", "session", session.ID())

	return nil
}

// Stop ends capture and finalizes the session into a clip.
func (m *Mic) Stop() (*Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil, ErrNotRecording
	}

	m.device.Uninit()
	m.device = nil

	session := m.session
	m.session = nil

	clip, err := session.Finalize()
	if err != nil {
		m.logger.Debug("recording discarded", "session", session.ID(), "error", err)
		return nil, err
	}

	m.logger.Debug("recording finalized",
		"session", session.ID(),
		"bytes", len(clip.Data),
	)

	return clip, nil
}

// Close releases the capture backend.
func (m *Mic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	if m.ctx != nil {
		_ = m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil
	}
	return nil
}

// Verify Mic implements Input at compile time.
var _ Input = (*Mic)(nil)
