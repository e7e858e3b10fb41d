package capture

import "context"

// Mock implements Source for testing.
type Mock struct {
	// CaptureFunc is called when Capture is invoked.
	CaptureFunc func(ctx context.Context) ([]byte, error)

	// Captures counts Capture invocations.
	Captures int
}

// NewMock creates a mock source returning a fixed frame.
func NewMock() *Mock {
	return &Mock{
		CaptureFunc: func(ctx context.Context) ([]byte, error) {
			return []byte("mock-jpeg-frame"), nil
		},
	}
}

// Capture delegates to CaptureFunc.
func (m *Mock) Capture(ctx context.Context) ([]byte, error) {
	m.Captures++
	return m.CaptureFunc(ctx)
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Verify Mock implements Source at compile time.
var _ Source = (*Mock)(nil)
