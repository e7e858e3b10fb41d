package speech

import (
	"context"
	"sync"
)

// Mock implements Provider for testing.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	SynthesizeFunc func(ctx context.Context, text string) (*Result, error)

	mu    sync.Mutex
	texts []string
}

// NewMock creates a mock returning a short silent PCM buffer.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*Result, error) {
			return &Result{Audio: make([]byte, 480), SampleRate: 24000}, nil
		},
	}
}

// Synthesize records the text and delegates to SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, text string) (*Result, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	return m.SynthesizeFunc(ctx, text)
}

// Texts returns every synthesized text in order.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
