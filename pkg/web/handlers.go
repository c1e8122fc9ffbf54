package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/quizcast/quizcast/pkg/hub"
	"github.com/quizcast/quizcast/pkg/live"
)

// StatusResponse is the dashboard's view of the running game.
type StatusResponse struct {
	GameID    string              `json:"game_id"`
	Status    string              `json:"status"`
	Muted     bool                `json:"muted"`
	Questions int                 `json:"questions"`
	Session   live.SessionStats   `json:"session"`
	Capture   live.CaptureStats   `json:"capture"`
	Scheduler live.SchedulerStats `json:"scheduler"`
}

// snapshot assembles the current status response.
func (s *Server) snapshot() StatusResponse {
	return StatusResponse{
		GameID:    s.game.ID(),
		Status:    s.game.Status().String(),
		Muted:     s.game.Muted(),
		Questions: len(s.game.Questions()),
		Session:   s.game.SessionStats(),
		Capture:   s.game.CaptureStats(),
		Scheduler: s.game.SchedulerStats(),
	}
}

// handleStatus returns the current game status.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.snapshot())
}

// handleQuestions returns the authoritative question set.
func (s *Server) handleQuestions(c *fiber.Ctx) error {
	return c.JSON(s.game.Questions())
}

// MuteRequest is the request body for the mute toggle.
type MuteRequest struct {
	Muted bool `json:"muted"`
}

// handleMute toggles the microphone gate.
func (s *Server) handleMute(c *fiber.Ctx) error {
	var req MuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	s.game.SetMuted(req.Muted)
	s.PublishStatus()
	return c.JSON(s.snapshot())
}

// handleStatusWS streams status snapshots to a websocket client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Current snapshot first, then broadcast updates. If the first
	// write already fails the connection is dead; don't register it.
	if err := c.WriteJSON(s.snapshot()); err != nil {
		s.logger.Debug("status socket closed before first snapshot", "error", err)
		c.Close()
		return
	}

	client := hub.NewClient(s.statusHub, c)
	client.Run()
}
