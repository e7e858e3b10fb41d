package audio

import (
	"math"
	"time"
)

// Waveform selects the oscillator shape for synthesized tones.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveTriangle
	WaveSawtooth
)

// synthesis parameters for the built-in cues
const (
	pingStartHz  = 2200.0
	pingDropRate = 9.0 // exponential pitch drop per second
	pingDuration = 130 * time.Millisecond

	pulseStartHz  = 620.0
	pulseEndHz    = 440.0
	pulseDuration = 150 * time.Millisecond
	pulseGap      = 180 * time.Millisecond

	alarmHz       = 880.0
	alarmDuration = 400 * time.Millisecond

	errorHz       = 220.0
	errorDuration = 250 * time.Millisecond
)

// clampPan limits a stereo pan value to [-1, 1]. Upstream values are
// not trusted; clamping happens at this boundary before any audio use.
func clampPan(pan float64) float64 {
	if pan < -1.0 {
		return -1.0
	}
	if pan > 1.0 {
		return 1.0
	}
	return pan
}

// oscillate returns one sample of the given waveform at phase (radians).
func oscillate(wave Waveform, phase float64) float64 {
	switch wave {
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1.0
		}
		return -1.0
	case WaveTriangle:
		return 2.0 / math.Pi * math.Asin(math.Sin(phase))
	case WaveSawtooth:
		p := math.Mod(phase/(2*math.Pi), 1.0)
		return 2.0*p - 1.0
	default:
		return math.Sin(phase)
	}
}

// toneSamples renders a fixed-frequency tone with an exponential decay
// envelope at the given rate.
func toneSamples(freq float64, dur time.Duration, wave Waveform, rate int) []float64 {
	n := int(dur.Seconds() * float64(rate))
	out := make([]float64, n)

	phase := 0.0
	step := 2 * math.Pi * freq / float64(rate)
	durSec := dur.Seconds()

	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		env := math.Exp(-6.0 * t / durSec)
		out[i] = oscillate(wave, phase) * env
		phase += step
	}

	return out
}

// pingSamples renders the sonar ping: a short high tone whose pitch
// drops exponentially while the amplitude decays.
func pingSamples(rate int) []float64 {
	n := int(pingDuration.Seconds() * float64(rate))
	out := make([]float64, n)

	phase := 0.0
	durSec := pingDuration.Seconds()

	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		freq := pingStartHz * math.Exp(-pingDropRate*t)
		env := math.Exp(-7.0 * t / durSec)
		out[i] = math.Sin(phase) * env
		phase += 2 * math.Pi * freq / float64(rate)
	}

	return out
}

// pulseSamples renders one caution pulse: a mid-range triangle tone
// sliding from pulseStartHz down to pulseEndHz with its own envelope.
func pulseSamples(rate int) []float64 {
	n := int(pulseDuration.Seconds() * float64(rate))
	out := make([]float64, n)

	phase := 0.0
	durSec := pulseDuration.Seconds()

	for i := 0; i < n; i++ {
		t := float64(i) / float64(rate)
		frac := t / durSec
		freq := pulseStartHz + (pulseEndHz-pulseStartHz)*frac
		env := math.Exp(-5.0 * frac)
		out[i] = oscillate(WaveTriangle, phase) * env
		phase += 2 * math.Pi * freq / float64(rate)
	}

	return out
}

// cautionSamples renders the full caution cue: two pulses separated by
// pulseGap of silence. Deliberately busier than the single ping but
// softer than the alarm.
func cautionSamples(rate int) []float64 {
	pulse := pulseSamples(rate)
	gap := int(pulseGap.Seconds() * float64(rate))

	out := make([]float64, len(pulse)*2+gap)
	copy(out, pulse)
	copy(out[len(pulse)+gap:], pulse)

	return out
}

// panStereo converts mono samples to interleaved stereo PCM16 using
// constant-power panning. pan must already be clamped to [-1, 1].
func panStereo(samples []float64, pan float64) []byte {
	angle := (pan + 1.0) * math.Pi / 4.0
	left := math.Cos(angle)
	right := math.Sin(angle)

	out := make([]float64, len(samples)*2)
	for i, s := range samples {
		out[i*2] = s * left
		out[i*2+1] = s * right
	}

	return EncodePCM16(out)
}
