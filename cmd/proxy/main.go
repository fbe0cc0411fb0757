package main

import (
	"log"

	"github.com/raflytch/interview-assistant/internal/config"
	"github.com/raflytch/interview-assistant/internal/gateway"
	"github.com/raflytch/interview-assistant/internal/handler"
	"github.com/raflytch/interview-assistant/internal/routes"
	"github.com/raflytch/interview-assistant/pkg/genai"
	applogger "github.com/raflytch/interview-assistant/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// The standalone proxy keeps the Gemini key off browser-facing deployments.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog := applogger.MustNew(cfg.App.Env, cfg.App.LogLevel)
	defer func() { _ = zlog.Sync() }()

	transport := gateway.NewDirectTransport(nil, nil)
	if cfg.AI.APIKey != "" {
		client, err := genai.NewClient(genai.Config{APIKey: cfg.AI.APIKey, Model: cfg.AI.Model})
		if err != nil {
			zlog.Fatal("failed to create genai client", zap.Error(err))
		}
		transport = gateway.NewDirectTransport(client, nil)
	} else {
		zlog.Warn("GEMINI_API_KEY is not set, every proxy call will fail")
	}

	app := fiber.New(fiber.Config{AppName: "Interview Assistant Proxy"})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	routes.SetupProxy(app, handler.NewProxyHandler(transport, cfg.AI.Timeout(), zlog))

	zlog.Info("proxy starting", zap.String("port", cfg.App.Port), zap.String("model", cfg.AI.Model))
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		zlog.Fatal("failed to start proxy", zap.Error(err))
	}
}
