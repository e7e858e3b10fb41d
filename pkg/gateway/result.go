package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SafetyStatus is the verdict of one analysis cycle.
type SafetyStatus string

const (
	SafetySafe    SafetyStatus = "SAFE"
	SafetyCaution SafetyStatus = "CAUTION"
	SafetyStop    SafetyStatus = "STOP"
)

// Box is a bounding box in the normalized 0-1000 coordinate space,
// top-left origin, ordered [ymin, xmin, ymax, xmax] on the wire.
type Box struct {
	YMin, XMin, YMax, XMax int
}

// DetectedRegion describes something the model located in the frame.
// Box is nil when the region has no usable location; renderers must
// tolerate that.
type DetectedRegion struct {
	Label string `json:"label"`
	Box   *Box   `json:"box_2d,omitempty"`
}

// VisualDebug carries the overlay regions for the rendering surface.
type VisualDebug struct {
	Hazards  []DetectedRegion `json:"hazards"`
	SafePath []DetectedRegion `json:"safe_path"`
}

// ClassificationResult is the structured output of one analysis cycle.
// Every result crossing the gateway boundary is validated: StereoPan is
// numeric and the region slices are non-nil.
type ClassificationResult struct {
	SafetyStatus      SafetyStatus `json:"safety_status"`
	ReasoningSummary  string       `json:"reasoning_summary"`
	NavigationCommand string       `json:"navigation_command"`
	StereoPan         float64      `json:"stereo_pan"`
	VisualDebug       VisualDebug  `json:"visual_debug"`
}

// FallbackResult is the fixed safe default returned when the remote
// service is unrecoverable. Fail-safe: never SAFE, never silent.
func FallbackResult() *ClassificationResult {
	return &ClassificationResult{
		SafetyStatus:      SafetyStop,
		ReasoningSummary:  "AI analysis unavailable",
		NavigationCommand: "AI error, proceed with caution",
		StereoPan:         0,
		VisualDebug: VisualDebug{
			Hazards:  []DetectedRegion{},
			SafePath: []DetectedRegion{},
		},
	}
}

// wireRegion matches the remote schema where box_2d is a coordinate
// array rather than an object.
type wireRegion struct {
	Label string `json:"label"`
	Box2D []int  `json:"box_2d"`
}

type wireResult struct {
	SafetyStatus      string  `json:"safety_status"`
	ReasoningSummary  string  `json:"reasoning_summary"`
	NavigationCommand string  `json:"navigation_command"`
	StereoPan         float64 `json:"stereo_pan"`
	VisualDebug       struct {
		Hazards  []wireRegion `json:"hazards"`
		SafePath []wireRegion `json:"safe_path"`
	} `json:"visual_debug"`
}

// StripCodeFences removes a markdown code fence wrapper from model
// output, with or without a language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the tag line (e.g. "json").
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseClassification parses model output into a validated
// ClassificationResult. Malformed JSON or an unknown safety status is a
// hard failure; callers fall back to FallbackResult.
func ParseClassification(text string) (*ClassificationResult, error) {
	var wire wireResult
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &wire); err != nil {
		return nil, fmt.Errorf("gateway: parse classification: %w", err)
	}

	status := SafetyStatus(strings.ToUpper(strings.TrimSpace(wire.SafetyStatus)))
	switch status {
	case SafetySafe, SafetyCaution, SafetyStop:
	default:
		return nil, fmt.Errorf("gateway: unknown safety status %q", wire.SafetyStatus)
	}

	res := &ClassificationResult{
		SafetyStatus:      status,
		ReasoningSummary:  wire.ReasoningSummary,
		NavigationCommand: wire.NavigationCommand,
		StereoPan:         wire.StereoPan,
		VisualDebug: VisualDebug{
			Hazards:  convertRegions(wire.VisualDebug.Hazards),
			SafePath: convertRegions(wire.VisualDebug.SafePath),
		},
	}

	return res, nil
}

func convertRegions(in []wireRegion) []DetectedRegion {
	out := make([]DetectedRegion, 0, len(in))
	for _, r := range in {
		region := DetectedRegion{Label: r.Label}
		if len(r.Box2D) == 4 {
			region.Box = &Box{
				YMin: r.Box2D[0],
				XMin: r.Box2D[1],
				YMax: r.Box2D[2],
				XMax: r.Box2D[3],
			}
		}
		out = append(out, region)
	}
	return out
}
