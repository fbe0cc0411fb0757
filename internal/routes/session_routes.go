package routes

import (
	"github.com/raflytch/interview-assistant/internal/handler"
	"github.com/raflytch/interview-assistant/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func setupSessionRoutes(router fiber.Router, h *handler.SessionHandler, auth *middleware.AuthMiddleware) {
	sessions := router.Group("/session")

	sessions.Use(auth.Authenticate())

	sessions.Get("/", h.Current)
	sessions.Get("/resume", h.Resumable)
	sessions.Put("/profile", h.UpdateProfile)
	sessions.Post("/resume", h.UploadResume)
	sessions.Put("/role", h.SetJobRole)
	sessions.Post("/start", h.Start)
	sessions.Post("/tick", h.Tick)
	sessions.Post("/answers", h.SubmitAnswer)
	sessions.Delete("/", h.Reset)
}
