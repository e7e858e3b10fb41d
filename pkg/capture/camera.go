package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Camera captures frames from a local video device via OpenCV.
type Camera struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	closed bool
}

// OpenCamera opens the configured video device.
func OpenCamera(cfg Config) (*Camera, error) {
	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("capture: open device %d: %w", cfg.Device, err)
	}

	return &Camera{
		cfg:    cfg,
		logger: slog.Default().With("component", "capture.camera"),
		cap:    cap,
	}, nil
}

// Capture grabs the current frame, downscales it to the target square
// resolution and re-encodes at reduced quality. If downscaling fails
// the native-resolution frame is returned instead.
func (c *Camera) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("capture: camera closed")
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := c.cap.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("capture: read frame from device %d", c.cfg.Device)
	}

	if c.cfg.TargetSize > 0 {
		small := gocv.NewMat()
		gocv.Resize(img, &small, image.Pt(c.cfg.TargetSize, c.cfg.TargetSize), 0, 0, gocv.InterpolationArea)
		if !small.Empty() {
			data, err := c.encode(small)
			small.Close()
			if err == nil {
				return data, nil
			}
			c.logger.Warn("downscale encode failed, falling back to native", "error", err)
		} else {
			small.Close()
		}
	}

	return c.encode(img)
}

func (c *Camera) encode(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(".jpg", img, []int{gocv.IMWriteJpegQuality, c.cfg.JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("capture: encode jpeg: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the camera device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.cap.Close()
}

// Verify Camera implements Source at compile time.
var _ Source = (*Camera)(nil)
