package routes

import (
	"github.com/raflytch/interview-assistant/internal/handler"

	"github.com/gofiber/fiber/v2"
)

// SetupProxy mounts only the completion proxy, for the standalone binary.
func SetupProxy(app *fiber.App, h *handler.ProxyHandler) {
	app.Get("/health", healthCheck)
	setupProxyRoutes(app, h)
}

func setupProxyRoutes(router fiber.Router, h *handler.ProxyHandler) {
	router.All("/api/gemini", h.Handle)
}
