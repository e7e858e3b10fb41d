package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/pathlight/go-pathlight/pkg/audio"
)

func TestChainFallsBackToNextProvider(t *testing.T) {
	failing := NewMock()
	failing.SynthesizeFunc = func(ctx context.Context, text string) (*Result, error) {
		return nil, ErrNoAudio
	}
	working := NewMock()
	working.SynthesizeFunc = func(ctx context.Context, text string) (*Result, error) {
		return &Result{Audio: []byte{1, 2, 3, 4}, SampleRate: 24000}, nil
	}

	chain, err := NewChain(failing, working)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	result, err := chain.Synthesize(context.Background(), "turn left")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Audio) != 4 {
		t.Errorf("expected fallback audio, got %d bytes", len(result.Audio))
	}
	if len(failing.Texts()) != 1 || len(working.Texts()) != 1 {
		t.Errorf("expected both providers tried once, got %d and %d",
			len(failing.Texts()), len(working.Texts()))
	}
}

func TestChainAggregatesAllFailures(t *testing.T) {
	first := NewMock()
	first.SynthesizeFunc = func(ctx context.Context, text string) (*Result, error) {
		return nil, ErrNoAudio
	}
	second := NewMock()
	second.SynthesizeFunc = func(ctx context.Context, text string) (*Result, error) {
		return nil, ErrProviderUnavailable
	}

	chain, err := NewChain(first, second)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	_, err = chain.Synthesize(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}

	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected ChainError, got %T", err)
	}
	if len(chainErr.Errors) != 2 {
		t.Errorf("expected 2 aggregated errors, got %d", len(chainErr.Errors))
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Error("expected Unwrap to surface the last provider error")
	}
}

func TestChainRequiresProviders(t *testing.T) {
	if _, err := NewChain(); err == nil {
		t.Fatal("expected error for empty chain")
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := NewMock()
	first.SynthesizeFunc = func(ctx context.Context, text string) (*Result, error) {
		cancel()
		return nil, ErrNoAudio
	}
	second := NewMock()

	chain, err := NewChain(first, second)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	if _, err := chain.Synthesize(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(second.Texts()) != 0 {
		t.Error("second provider should not run after cancellation")
	}
}

type sinkRecorder struct {
	plays int
}

func (s *sinkRecorder) Play(data []byte) error { s.plays++; return nil }
func (s *sinkRecorder) SampleRate() int        { return 44100 }

func TestSpeakerPlaysErrorToneOnFailure(t *testing.T) {
	sink := &sinkRecorder{}
	engine := audio.NewEngineWithSink(sink)

	broken := NewMock()
	broken.SynthesizeFunc = func(ctx context.Context, text string) (*Result, error) {
		return nil, ErrNoAudio
	}

	speaker := NewSpeaker(broken, engine)
	speaker.Say(context.Background(), "path ahead is clear")

	if sink.plays != 1 {
		t.Fatalf("expected one error tone playback, got %d", sink.plays)
	}
}

func TestSpeakerIgnoresEmptyText(t *testing.T) {
	sink := &sinkRecorder{}
	engine := audio.NewEngineWithSink(sink)
	mock := NewMock()

	speaker := NewSpeaker(mock, engine)
	speaker.Say(context.Background(), "")

	if len(mock.Texts()) != 0 {
		t.Error("empty text should not reach the provider")
	}
	if sink.plays != 0 {
		t.Error("empty text should not produce playback")
	}
}
