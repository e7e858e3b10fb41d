// Package capture provides camera frame sources for the perception loop.
package capture

import "context"

// Source yields JPEG-encoded frames. Implementations bound the frame
// size so remote upload cost stays predictable.
type Source interface {
	// Capture grabs the current frame as JPEG bytes.
	Capture(ctx context.Context) ([]byte, error)

	// Close releases the underlying device.
	Close() error
}

// Config holds frame source configuration.
type Config struct {
	// Device is the camera device index.
	Device int

	// TargetSize is the square resolution frames are downscaled to
	// before upload. Zero disables downscaling.
	TargetSize int

	// JPEGQuality is the re-encode quality for downscaled frames.
	JPEGQuality int
}

// DefaultConfig returns production defaults: 512x512 at reduced quality
// to bound upload size and latency.
func DefaultConfig() Config {
	return Config{
		Device:      0,
		TargetSize:  512,
		JPEGQuality: 70,
	}
}
