package speech

import (
	"context"

	"github.com/pathlight/go-pathlight/pkg/gateway"
)

// SpeechSource is the slice of the gateway this provider needs.
type SpeechSource interface {
	GenerateSpeech(ctx context.Context, text string) []byte
}

// Gemini synthesizes speech through the remote gateway.
type Gemini struct {
	source SpeechSource
}

// NewGemini creates a provider over the gateway's speech endpoint.
func NewGemini(source SpeechSource) *Gemini {
	return &Gemini{source: source}
}

// Synthesize converts text to audio via the gateway. The gateway
// signals failure with a nil payload, surfaced here as ErrNoAudio so
// the chain can fall through.
func (g *Gemini) Synthesize(ctx context.Context, text string) (*Result, error) {
	audio := g.source.GenerateSpeech(ctx, text)
	if len(audio) == 0 {
		return nil, ErrNoAudio
	}

	return &Result{
		Audio:      audio,
		SampleRate: gateway.SpeechSampleRate,
	}, nil
}

// Close is a no-op; the gateway owns its resources.
func (g *Gemini) Close() error {
	return nil
}

// Verify Gemini implements Provider at compile time.
var _ Provider = (*Gemini)(nil)
