package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raflytch/interview-assistant/internal/config"
	"github.com/raflytch/interview-assistant/internal/database"
	"github.com/raflytch/interview-assistant/internal/gateway"
	"github.com/raflytch/interview-assistant/internal/handler"
	"github.com/raflytch/interview-assistant/internal/middleware"
	"github.com/raflytch/interview-assistant/internal/repository"
	"github.com/raflytch/interview-assistant/internal/routes"
	"github.com/raflytch/interview-assistant/internal/service"
	"github.com/raflytch/interview-assistant/pkg/genai"
	"github.com/raflytch/interview-assistant/pkg/imagekit"
	"github.com/raflytch/interview-assistant/pkg/jwt"
	applogger "github.com/raflytch/interview-assistant/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog := applogger.MustNew(cfg.App.Env, cfg.App.LogLevel)
	defer func() { _ = zlog.Sync() }()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.EnsureSchema(schemaCtx, db)
	cancel()
	if err != nil {
		zlog.Fatal("failed to prepare database schema", zap.Error(err))
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	jwtManager := jwt.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	direct := newDirectTransport(cfg.AI, zlog)
	aiGateway := gateway.New(selectTransport(cfg, direct, zlog), nil,
		gateway.WithLogger(zlog),
		gateway.WithTimeout(cfg.AI.Timeout()),
	)

	var resumeStorage service.ResumeStorage
	if cfg.ImageKit.Enabled() {
		resumeStorage = imagekit.NewClient(imagekit.Config{
			PublicKey:   cfg.ImageKit.PublicKey,
			PrivateKey:  cfg.ImageKit.PrivateKey,
			URLEndpoint: cfg.ImageKit.URLEndpoint,
		})
	}

	cacheRepo := repository.NewCacheRepository(redisClient)
	sessionStore := repository.NewSessionStore(redisClient, cfg.Interview.SessionTTL())
	submissionGuard := repository.NewSubmissionGuard(cacheRepo, cfg.Interview.SubmitGuardTTL())
	interviewRepo := repository.NewInterviewRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	authService := service.NewAuthService(jwtManager, cacheRepo)
	quotaService := service.NewQuotaService(usageRepo, cfg.Interview.MonthlyLimit)
	sessionService := service.NewSessionService(sessionStore, submissionGuard, aiGateway, interviewRepo, quotaService, resumeStorage, zlog)
	resumeService := service.NewResumeService(sessionService, resumeStorage, zlog)
	interviewService := service.NewInterviewService(interviewRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	sessionHandler := handler.NewSessionHandler(sessionService, resumeService)
	interviewHandler := handler.NewInterviewHandler(interviewService)
	proxyHandler := handler.NewProxyHandler(direct, cfg.AI.Timeout(), zlog)

	app := fiber.New(fiber.Config{
		AppName:      "Interview Assistant API",
		ErrorHandler: customErrorHandler,
		BodyLimit:    6 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		AllowCredentials: false,
	}))

	routes.Setup(app, routes.Handlers{
		Session:   sessionHandler,
		Interview: interviewHandler,
		Proxy:     proxyHandler,
	}, routes.Middlewares{
		Auth: authMiddleware,
	})

	go shutdownOnSignal(app, zlog)

	zlog.Info("server starting",
		zap.String("port", cfg.App.Port),
		zap.String("ai_transport", cfg.AI.Transport),
	)
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// newDirectTransport talks to Gemini with the server's key. Without a key it
// reports itself unconfigured and every call fails over to the fallback bank.
func newDirectTransport(cfg config.AIConfig, zlog *zap.Logger) *gateway.DirectTransport {
	if cfg.APIKey == "" {
		zlog.Warn("GEMINI_API_KEY is not set, AI features will use fallbacks")
		return gateway.NewDirectTransport(nil, nil)
	}

	client, err := genai.NewClient(genai.Config{APIKey: cfg.APIKey, Model: cfg.Model})
	if err != nil {
		zlog.Error("failed to create genai client", zap.Error(err))
		return gateway.NewDirectTransport(nil, nil)
	}
	return gateway.NewDirectTransport(client, nil)
}

func selectTransport(cfg *config.Config, direct *gateway.DirectTransport, zlog *zap.Logger) gateway.Transport {
	switch cfg.AI.Transport {
	case config.TransportProxy:
		return gateway.NewProxyTransport(cfg.AI.ProxyURL, cfg.AI.Timeout())
	case config.TransportDirect:
		if direct.Configured() {
			return direct
		}
		return nil
	default:
		zlog.Warn("unknown AI transport, using fallbacks only", zap.String("transport", cfg.AI.Transport))
		return nil
	}
}

func shutdownOnSignal(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
