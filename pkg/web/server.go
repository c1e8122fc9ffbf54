// Package web provides the control surface for a running quiz: an
// HTTP API for status, the question list and the mute toggle, plus a
// websocket stream of status updates.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/quizcast/quizcast/pkg/hub"
	"github.com/quizcast/quizcast/pkg/live"
	"github.com/quizcast/quizcast/pkg/trivia"
)

// Game is the running quiz as seen by the dashboard. It is satisfied
// by *game.Orchestrator.
type Game interface {
	ID() string
	Status() live.State
	Muted() bool
	SetMuted(muted bool)
	Questions() []trivia.Question
	SessionStats() live.SessionStats
	CaptureStats() live.CaptureStats
	SchedulerStats() live.SchedulerStats
}

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	game   Game
	logger *slog.Logger

	statusHub *hub.Hub
}

// NewServer creates a dashboard server for game.
func NewServer(port string, game Game, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:      port,
		game:      game,
		logger:    logger,
		statusHub: hub.New("status", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "quizcast",
		DisableStartupMessage: true,
	})

	// CORS for local development.
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/questions", s.handleQuestions)
	api.Post("/mute", s.handleMute)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start starts the server and blocks.
func (s *Server) Start() error {
	go s.statusHub.Run()
	s.logger.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server failed", "error", err)
		}
	}()
}

// PublishStatus broadcasts the current status snapshot to websocket
// clients. Call it from the orchestrator's OnStatus callback.
func (s *Server) PublishStatus() {
	s.statusHub.BroadcastJSON(s.snapshot())
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
