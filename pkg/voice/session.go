package voice

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// Session accumulates audio chunks for one hold of the speak control.
// Sessions are transient: finalized once, never reused.
type Session struct {
	id         string
	sampleRate int

	mu        sync.Mutex
	buf       bytes.Buffer
	finalized bool
}

// NewSession creates a recording session for PCM16 audio at the given rate.
func NewSession(sampleRate int) *Session {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	return &Session{
		id:         uuid.NewString(),
		sampleRate: sampleRate,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds a PCM16 chunk to the session.
func (s *Session) Append(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrSessionFinalized
	}
	s.buf.Write(pcm)
	return nil
}

// Size returns the number of raw audio bytes captured so far.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Finalize encodes the captured audio into a transferable WAV clip and
// marks the session dead. Clips below MinClipBytes are rejected as
// noise without encoding.
func (s *Session) Finalize() (*Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrSessionFinalized
	}
	s.finalized = true

	if s.buf.Len() < MinClipBytes {
		return nil, ErrClipTooShort
	}

	return &Clip{
		Data:       encodeWAV(s.buf.Bytes(), s.sampleRate, Channels),
		MIMEType:   "audio/wav",
		SampleRate: s.sampleRate,
	}, nil
}
