// Package web serves the capture widget and its state streams.
//
// The server is a thin renderer-facing shell: REST verbs map onto the
// session's transitions, and every committed snapshot is fanned out on
// a websocket so the widget redraws from state instead of polling.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/bottlebank/depositcam/pkg/camera"
	"github.com/bottlebank/depositcam/pkg/hub"
	"github.com/bottlebank/depositcam/pkg/session"
)

// Server hosts the widget, the session API and the state streams.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	session *session.Session

	// remote is the browser-fed frame source; nil in kiosk mode where
	// the service owns the camera device.
	remote *camera.Remote

	stateHub   *hub.Hub
	previewHub *hub.Hub
}

// Config holds server construction parameters.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// StaticDir holds the widget markup. Empty disables static serving
	// (useful in tests).
	StaticDir string

	// Session is the capture state machine. Required.
	Session *session.Session

	// Remote is the browser-fed camera source, if this deployment uses
	// one.
	Remote *camera.Remote

	// Logger is the structured logger.
	Logger *slog.Logger
}

// NewServer builds the fiber app and wires the session streams.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web")

	s := &Server{
		addr:       cfg.Addr,
		logger:     logger,
		session:    cfg.Session,
		remote:     cfg.Remote,
		stateHub:   hub.New("state", logger),
		previewHub: hub.New("preview", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "depositcam",
		DisableStartupMessage: true,
	})

	// CORS for local development.
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/image", s.handleImage)
	api.Post("/session/start", s.handleStart)
	api.Post("/session/cancel", s.handleCancel)
	api.Post("/session/capture", s.handleCapture)
	api.Post("/session/reset", s.handleReset)
	api.Post("/camera/frame", s.handleCameraFrame)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app

	// Every committed session change becomes one broadcast snapshot.
	s.session.Subscribe(func(snap session.Snapshot) {
		if err := s.stateHub.BroadcastJSON(snap); err != nil {
			s.logger.Error("snapshot broadcast failed", "error", err)
		}
	})

	return s
}

// Start runs the hubs and listens. Blocks until shutdown.
func (s *Server) Start() error {
	go s.stateHub.Run()
	go s.previewHub.Run()

	s.logger.Info("widget available", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// PublishPreview fans a preview frame out to connected widgets.
// Kiosk mode feeds this from the webcam frame pump.
func (s *Server) PublishPreview(jpeg []byte) {
	s.previewHub.BroadcastBinary(jpeg)
}

// Shutdown stops the hubs and the listener.
func (s *Server) Shutdown() error {
	s.stateHub.Stop()
	s.previewHub.Stop()
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
