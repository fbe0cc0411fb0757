package routes

import (
	"github.com/raflytch/interview-assistant/internal/handler"
	"github.com/raflytch/interview-assistant/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func setupInterviewRoutes(router fiber.Router, h *handler.InterviewHandler, auth *middleware.AuthMiddleware) {
	interviews := router.Group("/interviews")

	interviews.Use(auth.Authenticate(), middleware.RequireInterviewer())

	interviews.Get("/", h.List)
	interviews.Get("/:id", h.GetByID)
	interviews.Get("/:id/pdf", h.DownloadPDF)
	interviews.Delete("/:id", h.Delete)
}
