// Package hud serves the visual debug overlay and the user-facing
// control hooks: scan toggle, hold-to-speak, language selection and
// emergency reset. State snapshots, local detector boxes and camera
// frames stream to the overlay over websockets.
package hud

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/pathlight/go-pathlight/pkg/capture"
	"github.com/pathlight/go-pathlight/pkg/detect"
	"github.com/pathlight/go-pathlight/pkg/hub"
	"github.com/pathlight/go-pathlight/pkg/perception"
)

// Controls is the slice of the perception controller the overlay
// drives. *perception.Controller satisfies it.
type Controls interface {
	StartScanning()
	StopScanning()
	StartListening() error
	StopListening() error
	Reset()
	SetLanguage(lang string)
	Snapshot() perception.Snapshot
}

// DetectionUpdate is one local-detector pass pushed to the overlay.
type DetectionUpdate struct {
	Time    string          `json:"time"`
	Objects []detect.Object `json:"objects"`
}

// Server is the overlay web server.
type Server struct {
	app      *fiber.App
	port     string
	controls Controls
	logger   *slog.Logger

	stateHub  *hub.Hub
	detectHub *hub.Hub
	cameraHub *hub.Hub

	mu             sync.RWMutex
	lastDetections []detect.Object
}

// NewServer creates the overlay server bound to the given controls.
func NewServer(port string, controls Controls) *Server {
	s := &Server{
		port:      port,
		controls:  controls,
		logger:    slog.Default().With("component", "hud"),
		stateHub:  hub.New("state"),
		detectHub: hub.New("detections"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Pathlight HUD",
		DisableStartupMessage: true,
	})

	// CORS for local development.
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/detections", s.handleDetections)
	api.Post("/scan/start", s.handleScanStart)
	api.Post("/scan/stop", s.handleScanStop)
	api.Post("/listen/start", s.handleListenStart)
	api.Post("/listen/stop", s.handleListenStop)
	api.Post("/reset", s.handleReset)
	api.Post("/language", s.handleLanguage)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/detections", websocket.New(s.handleDetectionsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hubs and blocks serving HTTP.
func (s *Server) Start() error {
	go s.stateHub.Run()
	go s.detectHub.Run()
	go s.cameraHub.Run()

	s.logger.Info("debug overlay listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("overlay server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishState broadcasts a controller snapshot to the overlay. Wire it
// as the controller's update callback.
func (s *Server) PublishState(snap perception.Snapshot) {
	_ = s.stateHub.BroadcastJSON(snap)
}

// PublishDetections broadcasts one local-detector pass.
func (s *Server) PublishDetections(objects []detect.Object) {
	s.mu.Lock()
	s.lastDetections = objects
	s.mu.Unlock()

	_ = s.detectHub.BroadcastJSON(DetectionUpdate{
		Time:    time.Now().Format("15:04:05.000"),
		Objects: objects,
	})
}

// PublishFrame broadcasts a JPEG camera frame.
func (s *Server) PublishFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// StreamFrames periodically captures and broadcasts frames to overlay
// clients until the context is cancelled. Capture is skipped while
// nobody is watching the camera feed. Call in a goroutine.
func (s *Server) StreamFrames(ctx context.Context, source capture.Source, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.cameraHub.ClientCount() == 0 {
				continue
			}
			frame, err := source.Capture(ctx)
			if err != nil {
				s.logger.Debug("overlay frame capture failed", "error", err)
				continue
			}
			s.PublishFrame(frame)
		}
	}
}

func (s *Server) handleStateWS(c *websocket.Conn) {
	hub.NewClient(s.stateHub, c).Run()
}

func (s *Server) handleDetectionsWS(c *websocket.Conn) {
	hub.NewClient(s.detectHub, c).Run()
}

func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Run()
}
