package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/config"
	"github.com/danieliancu/AICodeMaster/internal/database"
	"github.com/danieliancu/AICodeMaster/internal/handler"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/internal/router"
	"github.com/danieliancu/AICodeMaster/internal/service"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var events tutor.EventPublisher
	if cfg.NATSUrl != "" {
		conn, err := nats.Connect(cfg.NATSUrl, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		events = service.NewNATSPublisher(conn, logger)
	}

	generator, err := ai.New(context.Background(), ai.Config{
		Provider:     cfg.AIProvider,
		Model:        cfg.AIModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		MaxTokens:    cfg.AIMaxTokens,
		Temperature:  float32(cfg.AITemperature),
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai generator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	codeRepo := repository.NewLessonCodeRepository(db)
	threadRepo := repository.NewChatThreadRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	tracker := tutor.NewTracker(progressRepo, logger)
	tutorService := tutor.NewService(generator, threadRepo, tracker, events, cfg.TutorDebounce, logger)

	authService := service.NewAuthService(userRepo, sessionRepo, validate, cfg.JWTSecret, cfg.SessionTTL, logger)
	settingsService := service.NewSettingsService(lessonRepo, progressRepo, userRepo, redisClient, cfg.LessonCacheTTL, validate, logger)
	workspaceService := service.NewWorkspaceService(lessonRepo, codeRepo, threadRepo, tracker, validate, logger)
	seedService := service.NewSeedService(lessonRepo, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	tutorHandler := handler.NewTutorHandler(tutorService, workspaceService, logger)
	realtimeHandler := handler.NewRealtimeHandler(tutorService, workspaceService, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DB:               db,
		AuthHandler:      authHandler,
		SettingsHandler:  settingsHandler,
		WorkspaceHandler: workspaceHandler,
		TutorHandler:     tutorHandler,
		RealtimeHandler:  realtimeHandler,
		SeedHandler:      seedHandler,
		AuthMiddleware:   middleware.SessionProtected(authService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
