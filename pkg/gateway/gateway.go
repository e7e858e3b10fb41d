// Package gateway wraps the remote multimodal service behind total
// operations: every entry point returns a usable value even when the
// service misbehaves. Frame analysis degrades to a STOP default,
// transcription to an empty string, speech synthesis to nil audio.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Default models for the retry policy.
const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultFallbackModel = "gemini-2.0-flash"
	DefaultSpeechModel   = "gemini-2.5-flash-preview-tts"
	DefaultSpeechVoice   = "Kore"

	// SpeechSampleRate is the PCM rate of synthesized speech payloads.
	SpeechSampleRate = 24000
)

const analyzeSystemPrompt = `You are a navigation assistant for a blind pedestrian. ` +
	`Analyze the camera frame for walkable space and hazards. ` +
	`Respond ONLY with a JSON object with fields: ` +
	`safety_status ("SAFE", "CAUTION" or "STOP"), ` +
	`reasoning_summary (short sentence), ` +
	`navigation_command (short imperative instruction), ` +
	`stereo_pan (number from -1.0 for hard left to 1.0 for hard right, pointing at the most relevant hazard or path), ` +
	`visual_debug {hazards: [{label, box_2d:[ymin,xmin,ymax,xmax] on a 0-1000 scale}], safe_path: [same shape]}.`

// ModelAttempt pairs a model with the error classes it may recover
// from. The first attempt always runs; a later attempt runs only when
// Recovers accepts the previous attempt's error.
type ModelAttempt struct {
	Model string

	// Recovers reports whether this attempt should run after err.
	// Nil means never (the attempt is unreachable past the first slot).
	Recovers func(err error) bool
}

// DefaultPolicy is one fallback try on retryable failures.
func DefaultPolicy() []ModelAttempt {
	return []ModelAttempt{
		{Model: DefaultModel},
		{Model: DefaultFallbackModel, Recovers: Retryable},
	}
}

// Gateway is the resilient wrapper around the remote service.
type Gateway struct {
	caller      Caller
	policy      []ModelAttempt
	speechModel string
	speechVoice string
	logger      *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPolicy replaces the default model retry policy.
func WithPolicy(policy []ModelAttempt) Option {
	return func(g *Gateway) {
		g.policy = policy
	}
}

// WithSpeechModel overrides the speech synthesis model and voice.
func WithSpeechModel(model, voice string) Option {
	return func(g *Gateway) {
		g.speechModel = model
		g.speechVoice = voice
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger.With("component", "gateway")
	}
}

// New creates a Gateway over the given caller.
func New(caller Caller, opts ...Option) *Gateway {
	g := &Gateway{
		caller:      caller,
		policy:      DefaultPolicy(),
		speechModel: DefaultSpeechModel,
		speechVoice: DefaultSpeechVoice,
		logger:      slog.Default().With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// generate applies a model retry policy to one request.
func (g *Gateway) generate(ctx context.Context, policy []ModelAttempt, req *ContentRequest) (*Reply, error) {
	var lastErr error

	for i, attempt := range policy {
		if i > 0 {
			if attempt.Recovers == nil || !attempt.Recovers(lastErr) {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}

		reply, err := g.caller.GenerateContent(ctx, attempt.Model, req)
		if err == nil {
			if i > 0 {
				g.logger.Info("fallback model succeeded", "model", attempt.Model)
			}
			return reply, nil
		}

		lastErr = err
		g.logger.Warn("model call failed",
			"model", attempt.Model,
			"attempt", i,
			"error", err,
		)
	}

	return nil, lastErr
}

// AnalyzeFrame classifies a camera frame. It always returns a usable
// result: any unrecoverable failure yields the fixed STOP default.
func (g *Gateway) AnalyzeFrame(ctx context.Context, image []byte, language, prompt string) *ClassificationResult {
	parts := []Part{
		{InlineData: image, MIMEType: "image/jpeg"},
		{Text: analyzePrompt(language, prompt)},
	}

	reply, err := g.generate(ctx, g.policy, &ContentRequest{
		System:           analyzeSystemPrompt,
		Parts:            parts,
		Temperature:      0.2,
		MaxOutputTokens:  800,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		g.logger.Error("frame analysis unrecoverable", "error", err)
		return FallbackResult()
	}

	result, err := ParseClassification(reply.Text)
	if err != nil {
		g.logger.Error("frame analysis response rejected", "error", err)
		return FallbackResult()
	}

	return result
}

func analyzePrompt(language, prompt string) string {
	text := fmt.Sprintf("Respond in language %q.", language)
	if prompt != "" {
		text += fmt.Sprintf(" The user asks: %q. Answer the question in navigation_command.", prompt)
	}
	return text
}

// TranscribeAudio converts a recorded clip to text. Returns an empty
// string on any failure; callers treat that as no intelligible speech.
func (g *Gateway) TranscribeAudio(ctx context.Context, audio []byte, mimeType, language string) string {
	parts := []Part{
		{InlineData: audio, MIMEType: mimeType},
		{Text: fmt.Sprintf("Transcribe this audio verbatim in language %q. Reply with the transcript only, nothing else.", language)},
	}

	reply, err := g.generate(ctx, g.policy, &ContentRequest{
		Parts:           parts,
		Temperature:     0,
		MaxOutputTokens: 200,
	})
	if err != nil {
		g.logger.Error("transcription unrecoverable", "error", err)
		return ""
	}

	return strings.TrimSpace(reply.Text)
}

// GenerateSpeech synthesizes speech for the given text. Returns nil on
// failure; callers must have an audible fallback.
func (g *Gateway) GenerateSpeech(ctx context.Context, text string) []byte {
	// The speech model has no cross-model fallback; one retry against
	// the same model covers transient failures.
	policy := []ModelAttempt{
		{Model: g.speechModel},
		{Model: g.speechModel, Recovers: Retryable},
	}

	reply, err := g.generate(ctx, policy, &ContentRequest{
		Parts:              []Part{{Text: text}},
		ResponseModalities: []string{"AUDIO"},
		SpeechVoice:        g.speechVoice,
	})
	if err != nil {
		g.logger.Error("speech synthesis unrecoverable", "error", err)
		return nil
	}
	return reply.InlineData
}
