package hud

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pathlight/go-pathlight/pkg/perception"
	"github.com/pathlight/go-pathlight/pkg/voice"
)

type controlsStub struct {
	snap      perception.Snapshot
	scans     int
	stops     int
	resets    int
	language  string
	listenErr error
	stopErr   error
}

func (c *controlsStub) StartScanning()          { c.scans++ }
func (c *controlsStub) StopScanning()           { c.stops++ }
func (c *controlsStub) StartListening() error   { return c.listenErr }
func (c *controlsStub) StopListening() error    { return c.stopErr }
func (c *controlsStub) Reset()                  { c.resets++ }
func (c *controlsStub) SetLanguage(lang string) { c.language = lang }

func (c *controlsStub) Snapshot() perception.Snapshot { return c.snap }

func TestControlEndpoints(t *testing.T) {
	controls := &controlsStub{snap: perception.Snapshot{State: perception.Idle, Language: "en-US"}}
	server := NewServer("0", controls)

	t.Run("scan toggle", func(t *testing.T) {
		resp, err := server.app.Test(httptest.NewRequest("POST", "/api/scan/start", nil))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if controls.scans != 1 {
			t.Fatal("expected StartScanning call")
		}

		if _, err := server.app.Test(httptest.NewRequest("POST", "/api/scan/stop", nil)); err != nil {
			t.Fatalf("request: %v", err)
		}
		if controls.stops != 1 {
			t.Fatal("expected StopScanning call")
		}
	})

	t.Run("reset", func(t *testing.T) {
		if _, err := server.app.Test(httptest.NewRequest("POST", "/api/reset", nil)); err != nil {
			t.Fatalf("request: %v", err)
		}
		if controls.resets != 1 {
			t.Fatal("expected Reset call")
		}
	})

	t.Run("state snapshot", func(t *testing.T) {
		resp, err := server.app.Test(httptest.NewRequest("GET", "/api/state", nil))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		var snap perception.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if snap.Language != "en-US" {
			t.Errorf("language = %q", snap.Language)
		}
	})
}

func TestLanguageEndpoint(t *testing.T) {
	controls := &controlsStub{}
	server := NewServer("0", controls)

	req := httptest.NewRequest("POST", "/api/language", strings.NewReader(`{"language":"de-DE"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if controls.language != "de-DE" {
		t.Errorf("language = %q, want de-DE", controls.language)
	}

	resp, err = server.app.Test(httptest.NewRequest("POST", "/api/language", strings.NewReader(`{}`)))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("empty language status = %d, want 400", resp.StatusCode)
	}
}

func TestListenEndpointsMapErrors(t *testing.T) {
	tests := []struct {
		name       string
		controls   *controlsStub
		path       string
		wantStatus int
	}{
		{
			name:       "already listening conflicts",
			controls:   &controlsStub{listenErr: perception.ErrAlreadyListening},
			path:       "/api/listen/start",
			wantStatus: 409,
		},
		{
			name:       "not listening conflicts",
			controls:   &controlsStub{stopErr: perception.ErrNotListening},
			path:       "/api/listen/stop",
			wantStatus: 409,
		},
		{
			name:       "short clip is unprocessable",
			controls:   &controlsStub{stopErr: voice.ErrClipTooShort},
			path:       "/api/listen/stop",
			wantStatus: 422,
		},
		{
			name:       "clean press succeeds",
			controls:   &controlsStub{},
			path:       "/api/listen/start",
			wantStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer("0", tt.controls)
			resp, err := server.app.Test(httptest.NewRequest("POST", tt.path, nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
