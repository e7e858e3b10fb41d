package hud

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pathlight/go-pathlight/pkg/detect"
	"github.com/pathlight/go-pathlight/pkg/perception"
)

// handleState returns the current controller snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.controls.Snapshot())
}

// handleDetections returns the most recent local-detector pass.
func (s *Server) handleDetections(c *fiber.Ctx) error {
	s.mu.RLock()
	objects := s.lastDetections
	s.mu.RUnlock()
	if objects == nil {
		objects = []detect.Object{}
	}
	return c.JSON(objects)
}

func (s *Server) handleScanStart(c *fiber.Ctx) error {
	s.controls.StartScanning()
	return c.JSON(s.controls.Snapshot())
}

func (s *Server) handleScanStop(c *fiber.Ctx) error {
	s.controls.StopScanning()
	return c.JSON(s.controls.Snapshot())
}

// handleListenStart is the "press" side of hold-to-speak.
func (s *Server) handleListenStart(c *fiber.Ctx) error {
	if err := s.controls.StartListening(); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, perception.ErrAlreadyListening) || errors.Is(err, perception.ErrBusy) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(s.controls.Snapshot())
}

// handleListenStop is the "release" side. A rejected clip is not a
// server error; the controller already gave audible feedback.
func (s *Server) handleListenStop(c *fiber.Ctx) error {
	if err := s.controls.StopListening(); err != nil {
		if errors.Is(err, perception.ErrNotListening) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(s.controls.Snapshot())
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.controls.Reset()
	return c.JSON(s.controls.Snapshot())
}

// LanguageRequest selects the spoken output language.
type LanguageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleLanguage(c *fiber.Ctx) error {
	var req LanguageRequest
	if err := c.BodyParser(&req); err != nil || req.Language == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "language required"})
	}
	s.controls.SetLanguage(req.Language)
	return c.JSON(s.controls.Snapshot())
}
