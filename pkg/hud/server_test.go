package hud

import (
	"context"
	"testing"
	"time"

	"github.com/pathlight/go-pathlight/pkg/capture"
)

func TestStreamFramesSkipsWithoutViewers(t *testing.T) {
	server := NewServer("0", &controlsStub{})
	source := capture.NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		server.StreamFrames(ctx, source, time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	if source.Captures != 0 {
		t.Fatalf("captured %d frames with no overlay clients connected", source.Captures)
	}
}

func TestStreamFramesStopsOnCancel(t *testing.T) {
	server := NewServer("0", &controlsStub{})
	source := capture.NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		server.StreamFrames(ctx, source, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StreamFrames did not return after cancellation")
	}
}
