package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	elevenLabsWSBaseURL = "wss://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModelID   = "eleven_turbo_v2_5"
	elevenLabsFormat    = "pcm_24000"
	elevenLabsRate      = 24000

	wsHandshakeTimeout = 10 * time.Second
	wsReadTimeout      = 30 * time.Second
)

// ElevenLabs synthesizes speech over the ElevenLabs streaming
// websocket. Each Synthesize call opens a short-lived connection,
// streams the full utterance and collects the audio chunks; there is no
// persistent connection to leak between calls.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	baseURL string
}

// NewElevenLabs creates the websocket synthesis provider.
func NewElevenLabs(apiKey, voiceID string) (*ElevenLabs, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if voiceID == "" {
		return nil, ErrNoVoiceID
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: elevenLabsWSBaseURL,
	}, nil
}

// wsMessage is one frame of the stream-input protocol.
type wsMessage struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
	Error   string `json:"error"`
}

// Synthesize streams the text and returns the concatenated PCM audio.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*Result, error) {
	url := fmt.Sprintf("%s/%s/stream-input?model_id=%s&output_format=%s",
		e.baseURL, e.voiceID, elevenLabsModelID, elevenLabsFormat)

	headers := http.Header{}
	headers.Set("xi-api-key", e.apiKey)

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("speech: websocket dial (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("speech: websocket dial: %w", err)
	}
	defer conn.Close()

	// Begin-of-stream, the utterance, then end-of-stream.
	bos := map[string]interface{}{
		"text": " ",
		"voice_settings": map[string]interface{}{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	if err := conn.WriteJSON(bos); err != nil {
		return nil, fmt.Errorf("speech: send BOS: %w", err)
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"text":                   text + " ",
		"try_trigger_generation": true,
	}); err != nil {
		return nil, fmt.Errorf("speech: send text: %w", err)
	}
	if err := conn.WriteJSON(map[string]interface{}{"text": ""}); err != nil {
		return nil, fmt.Errorf("speech: send EOS: %w", err)
	}

	var audio []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && len(audio) > 0 {
				break
			}
			return nil, fmt.Errorf("speech: read stream: %w", err)
		}

		if msg.Error != "" {
			return nil, fmt.Errorf("speech: elevenlabs: %s", msg.Error)
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("speech: decode audio chunk: %w", err)
			}
			audio = append(audio, chunk...)
		}
		if msg.IsFinal {
			break
		}
	}

	if len(audio) == 0 {
		return nil, ErrNoAudio
	}

	return &Result{Audio: audio, SampleRate: elevenLabsRate}, nil
}

// Close is a no-op; connections are per-call.
func (e *ElevenLabs) Close() error {
	return nil
}

// Verify ElevenLabs implements Provider at compile time.
var _ Provider = (*ElevenLabs)(nil)
