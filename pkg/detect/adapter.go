package detect

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pathlight/go-pathlight/pkg/capture"
)

// DefaultTickInterval approximates a display refresh tick.
const DefaultTickInterval = 100 * time.Millisecond

// Adapter runs the local detector against live frames at its own tick
// rate, decoupled from the slower remote loop. It enforces its own
// single-flight gate: a tick that finds a pass in flight is dropped.
// Failures yield an empty detection list and are never propagated.
type Adapter struct {
	det      Detector
	frames   capture.Source
	interval time.Duration
	logger   *slog.Logger

	// OnUpdate, when set, receives each completed pass's detections.
	OnUpdate func([]Object)

	mu       sync.Mutex
	inFlight bool
	last     []Object
}

// NewAdapter creates a detector adapter over the given frame source.
func NewAdapter(det Detector, frames capture.Source, interval time.Duration) *Adapter {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Adapter{
		det:      det,
		frames:   frames,
		interval: interval,
		logger:   slog.Default().With("component", "detect.adapter"),
	}
}

// Run ticks the adapter until the context is cancelled.
// Call in a goroutine.
func (a *Adapter) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// tick starts one detection pass unless one is already in flight.
func (a *Adapter) tick(ctx context.Context) {
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return
	}
	a.inFlight = true
	a.mu.Unlock()

	go a.pass(ctx)
}

func (a *Adapter) pass(ctx context.Context) {
	defer func() {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	objects := a.detectOnce(ctx)

	a.mu.Lock()
	a.last = objects
	onUpdate := a.OnUpdate
	a.mu.Unlock()

	if onUpdate != nil {
		onUpdate(objects)
	}
}

func (a *Adapter) detectOnce(ctx context.Context) []Object {
	frame, err := a.frames.Capture(ctx)
	if err != nil {
		a.logger.Debug("frame capture failed, no detections this tick", "error", err)
		return []Object{}
	}

	objects, err := a.det.Detect(frame)
	if err != nil {
		a.logger.Debug("detection failed, no detections this tick", "error", err)
		return []Object{}
	}
	if objects == nil {
		objects = []Object{}
	}
	return objects
}

// Last returns the most recent detections.
func (a *Adapter) Last() []Object {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Object, len(a.last))
	copy(out, a.last)
	return out
}
