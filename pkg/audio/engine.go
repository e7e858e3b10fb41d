package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine renders feedback cues into a Sink. It holds no signal-graph
// state between calls; each cue is synthesized and played independently.
type Engine struct {
	logger *slog.Logger

	// sink binds lazily on the first cue so device construction can
	// wait for the first user-triggered action. Cues fire from
	// multiple goroutines, so the bind is once-guarded.
	bindOnce sync.Once
	bind     func() (Sink, error)
	sink     Sink
	bindErr  error
}

// NewEngine creates an engine that plays through the shared device.
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default().With("component", "audio.engine"),
		bind: func() (Sink, error) {
			return GetDevice()
		},
	}
}

// NewEngineWithSink creates an engine playing into a custom sink.
func NewEngineWithSink(sink Sink) *Engine {
	return &Engine{
		logger: slog.Default().With("component", "audio.engine"),
		bind: func() (Sink, error) {
			return sink, nil
		},
	}
}

func (e *Engine) output() (Sink, error) {
	e.bindOnce.Do(func() {
		e.sink, e.bindErr = e.bind()
	})
	return e.sink, e.bindErr
}

// Beep plays a single tone with an exponential decay envelope.
func (e *Engine) Beep(freq float64, dur time.Duration, wave Waveform) error {
	sink, err := e.output()
	if err != nil {
		return err
	}
	samples := toneSamples(freq, dur, wave, sink.SampleRate())
	return sink.Play(panStereo(samples, 0))
}

// SonarPing plays the short high-pitched ping used for SAFE feedback,
// panned toward the indicated direction.
func (e *Engine) SonarPing(pan float64) error {
	sink, err := e.output()
	if err != nil {
		return err
	}
	samples := pingSamples(sink.SampleRate())
	return sink.Play(panStereo(samples, clampPan(pan)))
}

// CautionPulse plays the double-pulse caution cue, panned toward the
// indicated direction.
func (e *Engine) CautionPulse(pan float64) error {
	sink, err := e.output()
	if err != nil {
		return err
	}
	samples := cautionSamples(sink.SampleRate())
	return sink.Play(panStereo(samples, clampPan(pan)))
}

// Alarm plays the STOP alarm tone, panned toward the hazard.
func (e *Engine) Alarm(pan float64) error {
	sink, err := e.output()
	if err != nil {
		return err
	}
	samples := toneSamples(alarmHz, alarmDuration, WaveSquare, sink.SampleRate())
	return sink.Play(panStereo(samples, clampPan(pan)))
}

// ErrorTone plays the low tone used for rejected input and local errors.
func (e *Engine) ErrorTone() error {
	sink, err := e.output()
	if err != nil {
		return err
	}
	samples := toneSamples(errorHz, errorDuration, WaveSine, sink.SampleRate())
	return sink.Play(panStereo(samples, 0))
}

// PlayRawPCM decodes a 16-bit little-endian mono PCM payload at the
// given sample rate, resamples it to the device rate, and plays it
// centered. Used for synthesized speech payloads.
func (e *Engine) PlayRawPCM(data []byte, sampleRate int) error {
	if len(data) == 0 {
		return nil
	}
	if sampleRate <= 0 {
		return fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}

	sink, err := e.output()
	if err != nil {
		return err
	}

	samples := DecodePCM16(data)
	samples = ResampleFloats(samples, sampleRate, sink.SampleRate())
	return sink.Play(panStereo(samples, 0))
}

// PlayRawPCMBase64 decodes a base64 PCM16 payload and plays it.
func (e *Engine) PlayRawPCMBase64(b64 string, sampleRate int) error {
	data, err := DecodeBase64PCM(b64)
	if err != nil {
		return err
	}
	return e.PlayRawPCM(data, sampleRate)
}
