// Package audio provides the spatial feedback engine: a process-wide
// output device plus stateless synthesis for sonar pings, caution
// pulses, alarm beeps, and raw PCM playback.
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Device output format. All cues are rendered to interleaved stereo
// PCM16 at this rate before playback.
const (
	DeviceSampleRate = 44100
	DeviceChannels   = 2
)

// Sink is the playback surface the engine renders into.
// Device is the production implementation; tests inject their own.
type Sink interface {
	// Play starts playback of interleaved stereo PCM16 without blocking.
	Play(pcm []byte) error

	// SampleRate returns the sink's output rate in Hz.
	SampleRate() int
}

// Device wraps the process-wide oto context. Platform audio devices are
// a scarce resource: creating more than one context exhausts them, so
// the context is created once and shared for the process lifetime.
type Device struct {
	ctx *oto.Context
}

var (
	deviceOnce sync.Once
	device     *Device
	deviceErr  error
)

// GetDevice returns the shared output device, creating it on first use.
func GetDevice() (*Device, error) {
	deviceOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   DeviceSampleRate,
			ChannelCount: DeviceChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			deviceErr = fmt.Errorf("audio: open device: %w", err)
			return
		}
		<-ready
		device = &Device{ctx: ctx}
	})
	return device, deviceErr
}

// SampleRate returns the device output rate.
func (d *Device) SampleRate() int {
	return DeviceSampleRate
}

// Play starts playback of interleaved stereo PCM16. Each call gets its
// own short-lived player that is closed once playback finishes, so
// concurrent cues never share mutable playback state. The context is
// resumed first in case the platform suspended it during inactivity.
func (d *Device) Play(pcm []byte) error {
	if err := d.ctx.Resume(); err != nil {
		return fmt.Errorf("audio: resume device: %w", err)
	}

	p := d.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()

	go func() {
		for p.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		p.Close()
	}()

	return nil
}
