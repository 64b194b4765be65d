// @title Study Quiz API
// @version 1.0
// @description Generates study quizzes from a subject and optional study notes.
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "study-quiz/cmd/api/docs"
	"study-quiz/internal/adapter"
	"study-quiz/internal/adapter/llm"
	"study-quiz/internal/cache"
	"study-quiz/internal/config"
	"study-quiz/internal/domain"
	"study-quiz/internal/handler"
	"study-quiz/internal/logger"
	"study-quiz/internal/middleware"
	"study-quiz/internal/service"
	"study-quiz/internal/view"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	quizService := newQuizService(ctx, cfg, appLogger)

	var storage fiber.Storage
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		storage = adapter.NewRedisSessionStorage(redisClient)
	} else {
		appLogger.Info("No redis address configured, keeping sessions in memory")
	}

	app, err := buildApp(cfg, quizService, storage)
	if err != nil {
		appLogger.Fatal("Failed to build server", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		return app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		if storage != nil {
			return storage.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	appLogger.Info("Server exited gracefully")
}

// newQuizService wires the configured model. A provider that cannot be
// built leaves the service up but failing every request with a
// configuration error.
func newQuizService(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) service.QuizService {
	generator, err := llm.NewTextGenerator(ctx, cfg.LLM, nil)
	if err != nil {
		appLogger.Error("LLM provider unavailable, quiz generation disabled",
			zap.String("provider", cfg.LLM.Provider),
			zap.Error(err))
		if errors.Is(err, llm.ErrMissingCredential) {
			return service.NewQuizService(nil, cfg.Quiz)
		}
		return service.NewQuizService(nil, cfg.Quiz,
			service.WithConfigurationProblem("Server configuration error: "+err.Error()))
	}

	appLogger.Info("LLM provider initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", generator.ModelID()))
	return service.NewQuizService(generator, cfg.Quiz)
}

// buildApp assembles the fiber app. A nil storage keeps sessions in memory.
func buildApp(cfg *config.Config, quizService service.QuizService, storage fiber.Storage) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.HeaderRequestID,
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.NewQuizHandler(quizService).RegisterRoutes(app.Group("/api"))

	store := session.New(session.Config{
		Expiration:     cfg.Session.Expiration,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		Storage:        storage,
	})
	requester := view.RequesterFunc(func(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error) {
		return quizService.GenerateQuiz(ctx, req)
	})
	studyHandler, err := handler.NewStudyHandler(store, requester)
	if err != nil {
		return nil, err
	}
	studyHandler.RegisterRoutes(app)

	return app, nil
}
