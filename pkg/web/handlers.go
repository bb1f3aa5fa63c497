package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/bottlebank/depositcam/pkg/camera"
	"github.com/bottlebank/depositcam/pkg/hub"
	"github.com/bottlebank/depositcam/pkg/session"
)

// handleState returns the current read-only snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.session.Snapshot())
}

// handleImage returns the captured frame for the current cycle.
func (s *Server) handleImage(c *fiber.Ctx) error {
	image := s.session.Image()
	if image == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no captured image",
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(image)
}

// handleStart requests the camera and enters Capturing.
func (s *Server) handleStart(c *fiber.Ctx) error {
	if err := s.session.StartCamera(); err != nil {
		return transitionError(c, err)
	}
	return c.JSON(s.session.Snapshot())
}

// handleCancel abandons Capturing and returns to Idle.
func (s *Server) handleCancel(c *fiber.Ctx) error {
	if err := s.session.Cancel(); err != nil {
		return transitionError(c, err)
	}
	return c.JSON(s.session.Snapshot())
}

// handleCapture grabs one still and starts the analysis cycle.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	if err := s.session.Capture(c.Context()); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidTransition),
			errors.Is(err, session.ErrCameraNotReady):
			return transitionError(c, err)
		case errors.Is(err, camera.ErrNoFrame),
			errors.Is(err, camera.ErrNotReady):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			s.logger.Error("capture failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}
	return c.JSON(s.session.Snapshot())
}

// handleReset returns to Idle from any state.
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.session.Reset()
	return c.JSON(s.session.Snapshot())
}

// handleCameraFrame accepts a browser-uploaded preview frame.
func (s *Server) handleCameraFrame(c *fiber.Ctx) error {
	if s.remote == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "server owns the camera in this deployment",
		})
	}

	body := c.Body()
	frame := make([]byte, len(body))
	copy(frame, body)

	if err := s.remote.Submit(frame); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// transitionError maps a refused state-machine operation to 409.
// The state did not change; the body says why.
func transitionError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// handleStateWS streams session snapshots to a widget.
func (s *Server) handleStateWS(c *websocket.Conn) {
	// New clients get the current snapshot immediately so the widget
	// renders without waiting for the next transition.
	c.WriteJSON(s.session.Snapshot())

	client := hub.NewClient(s.stateHub, c)
	client.Run()
}

// handlePreviewWS streams binary preview frames to a widget.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	client := hub.NewClient(s.previewHub, c)
	client.Run()
}
