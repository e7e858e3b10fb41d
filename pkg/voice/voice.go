// Package voice provides push-to-talk audio capture for voice queries.
package voice

import "errors"

// Common errors returned by voice input.
var (
	ErrClipTooShort     = errors.New("voice: clip below minimum size")
	ErrSessionFinalized = errors.New("voice: session already finalized")
	ErrNotRecording     = errors.New("voice: no recording in progress")
	ErrAlreadyRecording = errors.New("voice: recording already in progress")
)

// Capture parameters for voice clips.
const (
	SampleRate = 16000
	Channels   = 1

	// MinClipBytes filters out stray clicks on the hold-to-speak
	// control: anything shorter never reaches the remote service.
	// 8KB is roughly a quarter second of 16kHz mono PCM16.
	MinClipBytes = 8 * 1024
)

// Clip is a finalized voice recording ready for upload.
type Clip struct {
	Data       []byte
	MIMEType   string
	SampleRate int
}

// Input is the push-to-talk surface the perception loop drives.
type Input interface {
	// Start begins capturing a new recording session.
	Start() error

	// Stop finalizes the session into a transferable clip.
	// Returns ErrClipTooShort when the captured audio is below the
	// minimum byte threshold.
	Stop() (*Clip, error)
}
