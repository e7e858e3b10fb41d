package gateway

import (
	"context"
	"sync"
)

// MockCaller implements Caller for testing.
type MockCaller struct {
	// GenerateFunc is called when GenerateContent is invoked.
	GenerateFunc func(ctx context.Context, model string, req *ContentRequest) (*Reply, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Model string
}

// NewMockCaller creates a mock that returns an empty SAFE classification.
func NewMockCaller() *MockCaller {
	return &MockCaller{
		GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
			return &Reply{Text: `{"safety_status":"SAFE","reasoning_summary":"clear","navigation_command":"Continue straight","stereo_pan":0,"visual_debug":{"hazards":[],"safe_path":[]}}`}, nil
		},
	}
}

// GenerateContent records the call and delegates to GenerateFunc.
func (m *MockCaller) GenerateContent(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Model: model})
	m.mu.Unlock()
	return m.GenerateFunc(ctx, model, req)
}

// Calls returns the recorded invocations.
func (m *MockCaller) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Verify MockCaller implements Caller at compile time.
var _ Caller = (*MockCaller)(nil)
