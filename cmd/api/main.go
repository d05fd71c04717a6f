// @title Quizmaster Attempt API
// @version 1.0
// @description Starts, scores and reports quiz attempts.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizmaster/internal/adapter"
	"quizmaster/internal/cache"
	"quizmaster/internal/config"
	"quizmaster/internal/database"
	"quizmaster/internal/domain"
	"quizmaster/internal/handler"
	"quizmaster/internal/jobs"
	"quizmaster/internal/logger"
	"quizmaster/internal/metrics"
	"quizmaster/internal/middleware"
	"quizmaster/internal/repository"
	"quizmaster/internal/service"

	_ "quizmaster/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	metrics.Init()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it quizzes are read straight from the database.
	var quizCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, quiz cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			quizCache = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		}
	}

	// Initialize repositories
	quizRepository := repository.NewQuizDatabaseAdapter(db)
	attemptRepository := repository.NewAttemptDatabaseAdapter(db)
	userRepository := repository.NewUserDatabaseAdapter(db)

	// Initialize services
	quizReader := service.NewCachedQuizReader(quizRepository, quizCache, cfg.Attempt.QuizCacheTTL)
	statsService := service.NewStatsService(quizRepository, userRepository, quizReader)
	attemptService := service.NewAttemptService(quizRepository, quizReader, attemptRepository, statsService, cfg.Attempt)
	expiryService := service.NewAttemptExpiryService(attemptRepository, cfg.Attempt.AbandonAfter)
	tokenService := service.NewTokenService(cfg.JWT)
	appLogger.Info("Services initialized", zap.String("scoring_basis", cfg.Attempt.ScoringBasis))

	scheduler := jobs.NewScheduler()
	if err := scheduler.AddExpirySweep(cfg.Attempt.SweepSchedule, expiryService); err != nil {
		appLogger.Fatal("Failed to schedule attempt expiry", zap.Error(err))
	}
	scheduler.Start()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	stopCleanup := make(chan struct{})
	go rateLimiter.RunCleanup(time.Minute, stopCleanup)

	// Initialize handlers
	attemptHandler := handler.NewAttemptHandler(attemptService)
	healthHandler := handler.NewHealthHandler(db, quizCache)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/healthz", healthHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group, every route requires an access token
	apiGroup := app.Group("/api", middleware.Protected(tokenService), rateLimiter.Handler())
	apiGroup.Post("/quizzes/:id/attempts", attemptHandler.StartAttempt)
	apiGroup.Post("/attempts/:id/submit", attemptHandler.SubmitAttempt)
	apiGroup.Get("/attempts/:id", attemptHandler.GetAttempt)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopCleanup)
	scheduler.Stop(ctx)
	appLogger.Info("Server exited gracefully")
}
