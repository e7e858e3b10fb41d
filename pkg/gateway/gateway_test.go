package gateway

import (
	"context"
	"errors"
	"testing"
)

func TestAnalyzeFrameFallback(t *testing.T) {
	t.Run("both models fail yields safe default", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return nil, &APIError{StatusCode: 500, Message: "overloaded", Model: model}
			},
		}
		g := New(mock)

		res := g.AnalyzeFrame(context.Background(), []byte("jpeg"), "en-US", "")

		if res.SafetyStatus != SafetyStop {
			t.Errorf("expected STOP, got %s", res.SafetyStatus)
		}
		if res.StereoPan != 0 {
			t.Errorf("expected pan 0, got %v", res.StereoPan)
		}
		if res.VisualDebug.Hazards == nil || len(res.VisualDebug.Hazards) != 0 {
			t.Error("hazards should be empty, non-nil")
		}
		if res.VisualDebug.SafePath == nil || len(res.VisualDebug.SafePath) != 0 {
			t.Error("safe_path should be empty, non-nil")
		}
		if len(mock.Calls()) != 2 {
			t.Errorf("expected primary + fallback calls, got %d", len(mock.Calls()))
		}
	})

	t.Run("non-retryable error skips fallback model", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return nil, &APIError{StatusCode: 400, Message: "bad request", Model: model}
			},
		}
		g := New(mock)

		res := g.AnalyzeFrame(context.Background(), []byte("jpeg"), "en-US", "")

		if res.SafetyStatus != SafetyStop {
			t.Errorf("expected STOP, got %s", res.SafetyStatus)
		}
		if len(mock.Calls()) != 1 {
			t.Errorf("400 should not trigger fallback, got %d calls", len(mock.Calls()))
		}
	})

	t.Run("rate limit recovers on fallback model", func(t *testing.T) {
		mock := &MockCaller{}
		mock.GenerateFunc = func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
			if model == DefaultModel {
				return nil, &APIError{StatusCode: 429, Message: "rate limited", Model: model}
			}
			return &Reply{Text: `{"safety_status":"CAUTION","reasoning_summary":"curb ahead","navigation_command":"Step up","stereo_pan":0.3,"visual_debug":{"hazards":[],"safe_path":[]}}`}, nil
		}
		g := New(mock)

		res := g.AnalyzeFrame(context.Background(), []byte("jpeg"), "en-US", "")

		if res.SafetyStatus != SafetyCaution {
			t.Errorf("expected CAUTION from fallback, got %s", res.SafetyStatus)
		}
		calls := mock.Calls()
		if len(calls) != 2 || calls[1].Model != DefaultFallbackModel {
			t.Errorf("expected fallback model call, got %+v", calls)
		}
	})

	t.Run("malformed JSON is a hard failure", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return &Reply{Text: "not json at all"}, nil
			},
		}
		g := New(mock)

		res := g.AnalyzeFrame(context.Background(), []byte("jpeg"), "en-US", "")
		if res.SafetyStatus != SafetyStop {
			t.Errorf("expected STOP default, got %s", res.SafetyStatus)
		}
		if len(mock.Calls()) != 1 {
			t.Errorf("parse failure must not retry, got %d calls", len(mock.Calls()))
		}
	})
}

func TestParseClassification(t *testing.T) {
	t.Run("strips code fences", func(t *testing.T) {
		text := "```json\n{\"safety_status\":\"SAFE\",\"reasoning_summary\":\"clear path\",\"navigation_command\":\"Go ahead\",\"stereo_pan\":-0.5,\"visual_debug\":{\"hazards\":[],\"safe_path\":[]}}\n```"

		res, err := ParseClassification(text)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if res.SafetyStatus != SafetySafe {
			t.Errorf("expected SAFE, got %s", res.SafetyStatus)
		}
		if res.StereoPan != -0.5 {
			t.Errorf("expected pan -0.5, got %v", res.StereoPan)
		}
	})

	t.Run("defaults region lists to empty", func(t *testing.T) {
		res, err := ParseClassification(`{"safety_status":"SAFE","navigation_command":"Go"}`)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if res.VisualDebug.Hazards == nil {
			t.Error("hazards should default to empty slice")
		}
		if res.VisualDebug.SafePath == nil {
			t.Error("safe_path should default to empty slice")
		}
	})

	t.Run("region without box is valid", func(t *testing.T) {
		res, err := ParseClassification(`{"safety_status":"CAUTION","navigation_command":"Careful","visual_debug":{"hazards":[{"label":"noise ahead"}],"safe_path":[]}}`)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(res.VisualDebug.Hazards) != 1 {
			t.Fatalf("expected 1 hazard, got %d", len(res.VisualDebug.Hazards))
		}
		if res.VisualDebug.Hazards[0].Box != nil {
			t.Error("missing box_2d should decode as nil box")
		}
	})

	t.Run("box coordinates are ordered ymin xmin ymax xmax", func(t *testing.T) {
		res, err := ParseClassification(`{"safety_status":"STOP","navigation_command":"Stop","visual_debug":{"hazards":[{"label":"car","box_2d":[100,200,300,400]}],"safe_path":[]}}`)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		box := res.VisualDebug.Hazards[0].Box
		if box == nil {
			t.Fatal("expected box")
		}
		if box.YMin != 100 || box.XMin != 200 || box.YMax != 300 || box.XMax != 400 {
			t.Errorf("unexpected box %+v", box)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		if _, err := ParseClassification(`{"safety_status":"MAYBE","navigation_command":"?"}`); err == nil {
			t.Error("unknown safety status should fail parsing")
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTranscribeAudio(t *testing.T) {
	t.Run("failure returns empty string", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return nil, errors.New("network down")
			},
		}
		g := New(mock)

		if got := g.TranscribeAudio(context.Background(), []byte("wav"), "audio/wav", "en-US"); got != "" {
			t.Errorf("expected empty transcript, got %q", got)
		}
	})

	t.Run("transcript is trimmed", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return &Reply{Text: "  where is the door \n"}, nil
			},
		}
		g := New(mock)

		if got := g.TranscribeAudio(context.Background(), []byte("wav"), "audio/wav", "en-US"); got != "where is the door" {
			t.Errorf("unexpected transcript %q", got)
		}
	})
}

func TestGenerateSpeech(t *testing.T) {
	t.Run("failure returns nil", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return nil, &APIError{StatusCode: 503, Message: "unavailable", Model: model}
			},
		}
		g := New(mock)

		if got := g.GenerateSpeech(context.Background(), "turn left"); got != nil {
			t.Errorf("expected nil audio, got %d bytes", len(got))
		}
	})

	t.Run("returns inline payload", func(t *testing.T) {
		mock := &MockCaller{
			GenerateFunc: func(ctx context.Context, model string, req *ContentRequest) (*Reply, error) {
				return &Reply{InlineData: []byte{1, 2, 3}, MIMEType: "audio/L16;rate=24000"}, nil
			},
		}
		g := New(mock)

		got := g.GenerateSpeech(context.Background(), "turn left")
		if len(got) != 3 {
			t.Errorf("expected 3 audio bytes, got %d", len(got))
		}
	})
}
