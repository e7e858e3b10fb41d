// Package config provides environment-driven configuration for pathlight commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the perception loop and HUD.
const (
	DefaultLanguage     = "en-US"
	DefaultScanInterval = 4 * time.Second
	DefaultCameraDevice = 0
	DefaultHUDPort      = "8090"
)

// GeminiAPIKey returns the Gemini API key from GEMINI_API_KEY. Empty
// means unset; callers surface the error through the gateway client,
// which rejects an empty key.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// ElevenLabsAPIKey returns the optional ElevenLabs key for streaming speech.
// Empty means the streaming speech provider is disabled.
func ElevenLabsAPIKey() string {
	return os.Getenv("ELEVENLABS_API_KEY")
}

// Language returns the spoken/output language from PATHLIGHT_LANG.
func Language() string {
	if lang := os.Getenv("PATHLIGHT_LANG"); lang != "" {
		return lang
	}
	return DefaultLanguage
}

// ScanInterval returns the minimum inter-cycle interval from
// PATHLIGHT_SCAN_INTERVAL (seconds). Values observed in practice
// range from 2.5 to 6 seconds.
func ScanInterval() time.Duration {
	if s := os.Getenv("PATHLIGHT_SCAN_INTERVAL"); s != "" {
		if secs, err := strconv.ParseFloat(s, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return DefaultScanInterval
}

// CameraDevice returns the camera device index from PATHLIGHT_CAMERA.
func CameraDevice() int {
	if s := os.Getenv("PATHLIGHT_CAMERA"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultCameraDevice
}

// HUDPort returns the debug HUD port from PATHLIGHT_HUD_PORT.
func HUDPort() string {
	if p := os.Getenv("PATHLIGHT_HUD_PORT"); p != "" {
		return p
	}
	return DefaultHUDPort
}

// DetectorModelPath returns the ONNX model path for the local detector
// from PATHLIGHT_DETECTOR_MODEL. Empty disables the local detector.
func DetectorModelPath() string {
	return os.Getenv("PATHLIGHT_DETECTOR_MODEL")
}

// LogLevel returns the log level from PATHLIGHT_LOG_LEVEL.
func LogLevel() string {
	if l := os.Getenv("PATHLIGHT_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}
