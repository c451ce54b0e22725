package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidquiz/internal/adapter"
	"vidquiz/internal/adapter/quizgen"
	"vidquiz/internal/adapter/whisper"
	"vidquiz/internal/adapter/ytdlp"
	"vidquiz/internal/cache"
	"vidquiz/internal/config"
	"vidquiz/internal/database"
	"vidquiz/internal/executor"
	"vidquiz/internal/handler"
	"vidquiz/internal/logger"
	"vidquiz/internal/middleware"
	"vidquiz/internal/repository"
	"vidquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	appLogger.Info("Successfully connected to database")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize repositories
	quizRepository := repository.NewQuizDatabaseAdapter(db)
	userRepository := repository.NewSQLXUserRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize the generative model
	llm, err := quizgen.NewLLM(context.Background(), cfg.Generator)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	appLogger.Info("LLM client initialized", zap.String("source", cfg.Generator.Source))

	// Initialize pipeline collaborators
	cmdExecutor := executor.New()
	fetcher := ytdlp.NewYtDlpFetcher(cfg.Tools, cmdExecutor)
	transcriber := whisper.NewWhisperTranscriber(cfg.Tools, cfg.Pipeline.MaxAudioSeconds, cmdExecutor)
	generator := quizgen.NewLLMQuestionGenerator(llm, cfg.Pipeline.TranscriptCharLimit, cfg.Pipeline.MaxResponseBytes)
	pipeline := service.NewQuizPipeline(fetcher, transcriber, generator, cfg.Pipeline)

	// Initialize services
	quizService := service.NewQuizService(pipeline, quizRepository, txManager, cacheAdapter, cfg.Pipeline.QuizCacheTTL)
	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create auth service", zap.Error(err))
	}

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService)
	authHandler := handler.NewAuthHandler(authService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/google/login", authHandler.GoogleLogin)
	auth.Get("/google/callback", authHandler.GoogleCallback)
	auth.Post("/refresh", authHandler.RefreshToken)

	quizzes := api.Group("/quizzes", middleware.Protected(authService))
	quizzes.Post("/", quizHandler.CreateQuiz)
	quizzes.Get("/", quizHandler.ListQuizzes)
	quizzes.Get("/:id", quizHandler.GetQuiz)
	quizzes.Patch("/:id", quizHandler.UpdateQuiz)
	quizzes.Delete("/:id", quizHandler.DeleteQuiz)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			appLogger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	appLogger.Info("Starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		appLogger.Fatal("Server stopped unexpectedly", zap.Error(err))
	}

	db.Close()
	redisClient.Close()
}
