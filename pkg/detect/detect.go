// Package detect provides the fast local object detector that runs
// independently of the remote analysis loop.
package detect

// Object represents a detected object with class info. Coordinates are
// normalized to [0,1] relative to the source frame, top-left origin.
type Object struct {
	ClassLabel string  `json:"class_label"`
	Confidence float64 `json:"confidence"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Detector is the interface for local detection backends.
type Detector interface {
	// Detect finds objects in the JPEG image.
	Detect(jpeg []byte) ([]Object, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float32 // Minimum confidence
	NMSThresh        float32 // Non-maximum suppression threshold
	InputWidth       int
	InputHeight      int
}

// DefaultConfig returns production defaults for YOLOv8n.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}
