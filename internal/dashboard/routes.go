package dashboard

import (
	"github.com/gofiber/fiber/v2"
)

func (s *implServer) routes() {
	s.app.Use(s.requestLogger())

	s.app.Get("/", s.index)
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "lesson-recorder dashboard is running",
		})
	})

	api := s.app.Group("/api/v1")
	api.Get("/devices", s.listDevices)
	api.Get("/status", s.status)
	api.Post("/recordings", s.startRecording)
	api.Post("/recordings/stop", s.stopRecording)
	api.Get("/sessions", s.listSessions)
	api.Get("/sessions/:name/:artifact", s.sessionArtifact)
	api.Get("/settings", s.getSettings)
	api.Put("/settings", s.putSettings)
}
