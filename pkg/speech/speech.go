// Package speech provides the high-quality voice path: synthesis
// providers behind a common interface with chain fallback, played
// through the audio engine. Failure is always audible; when every
// provider fails the caller hears an error tone instead of silence.
package speech

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pathlight/go-pathlight/pkg/audio"
)

// Common errors returned by providers.
var (
	ErrNoAPIKey            = errors.New("speech: API key required")
	ErrNoVoiceID           = errors.New("speech: voice ID required")
	ErrProviderUnavailable = errors.New("speech: provider unavailable")
	ErrNoAudio             = errors.New("speech: provider returned no audio")
)

// Result is a complete synthesis result: mono PCM16 at SampleRate.
type Result struct {
	Audio      []byte
	SampleRate int
}

// Provider defines the synthesis provider interface.
type Provider interface {
	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, text string) (*Result, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Speaker plays synthesized speech through the audio engine.
type Speaker struct {
	provider Provider
	engine   *audio.Engine
	logger   *slog.Logger
}

// NewSpeaker creates a speaker over the given provider.
func NewSpeaker(provider Provider, engine *audio.Engine) *Speaker {
	return &Speaker{
		provider: provider,
		engine:   engine,
		logger:   slog.Default().With("component", "speech.speaker"),
	}
}

// Say synthesizes and plays the text. When synthesis fails entirely the
// user hears an error tone; speech failure is never silent.
func (s *Speaker) Say(ctx context.Context, text string) {
	if text == "" {
		return
	}

	result, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		s.logger.Warn("speech synthesis failed", "error", err)
		if toneErr := s.engine.ErrorTone(); toneErr != nil {
			s.logger.Error("error tone failed", "error", toneErr)
		}
		return
	}

	if err := s.engine.PlayRawPCM(result.Audio, result.SampleRate); err != nil {
		s.logger.Error("speech playback failed", "error", err)
	}
}
