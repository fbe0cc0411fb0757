package routes

import (
	"github.com/raflytch/interview-assistant/internal/handler"
	"github.com/raflytch/interview-assistant/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Session   *handler.SessionHandler
	Interview *handler.InterviewHandler
	Proxy     *handler.ProxyHandler
}

type Middlewares struct {
	Auth *middleware.AuthMiddleware
}

func Setup(app *fiber.App, handlers Handlers, middlewares Middlewares) {
	app.Get("/health", healthCheck)

	if handlers.Proxy != nil {
		setupProxyRoutes(app, handlers.Proxy)
	}

	api := app.Group("/api/v1")

	setupSessionRoutes(api, handlers.Session, middlewares.Auth)
	setupInterviewRoutes(api, handlers.Interview, middlewares.Auth)
}

func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "server is running",
	})
}
