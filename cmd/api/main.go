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
	"github.com/rs/zerolog"

	"github.com/praxis-lms/praxis-go-api/internal/config"
	"github.com/praxis-lms/praxis-go-api/internal/database"
	"github.com/praxis-lms/praxis-go-api/internal/execution"
	"github.com/praxis-lms/praxis-go-api/internal/grading"
	"github.com/praxis-lms/praxis-go-api/internal/handler"
	"github.com/praxis-lms/praxis-go-api/internal/middleware"
	"github.com/praxis-lms/praxis-go-api/internal/models"
	"github.com/praxis-lms/praxis-go-api/internal/repository"
	"github.com/praxis-lms/praxis-go-api/internal/router"
	"github.com/praxis-lms/praxis-go-api/internal/service"
	"github.com/praxis-lms/praxis-go-api/pkg/ai"
	"github.com/praxis-lms/praxis-go-api/pkg/events"
	"github.com/praxis-lms/praxis-go-api/pkg/sandbox"
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

	if err := db.AutoMigrate(&models.Problem{}, &models.ProblemCase{}, &models.Test{}, &models.Question{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		natsPublisher, err := events.Connect(cfg.NATSURL, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	executor, err := sandbox.NewDockerExecutor(sandbox.Config{
		Host:          cfg.DockerHost,
		Timeout:       cfg.ExecutionTimeout,
		MemoryLimitMB: int64(cfg.CodeRunMemoryMB),
		CPUShares:     int64(cfg.CodeRunCPUShares),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create sandbox executor: %v", err)
	}

	advisor := buildAdvisor(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	runner := execution.NewRunner(executor, execution.Config{
		WorkspaceRoot:  cfg.WorkspaceRoot,
		Timeout:        cfg.ExecutionTimeout,
		CompileTimeout: cfg.CompileTimeout,
		MemoryLimitMB:  int64(cfg.CodeRunMemoryMB),
		CPUShares:      int64(cfg.CodeRunCPUShares),
	}, logger)
	cases := grading.NewRunner(runner, logger)
	limiter := service.NewSessionLimiter(cfg.MaxConcurrentSessions)

	submissionRepo := repository.NewSubmissionRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	testRepo := repository.NewTestRepository(db)

	executionService := service.NewExecutionService(runner, cases, limiter, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, problemRepo, testRepo, cases, advisor, publisher, redisClient, limiter, validate, logger, service.GradingConfig{
		ProblemCacheTTL: cfg.ProblemCacheTTL,
	})
	submissionService := service.NewSubmissionService(submissionRepo, logger)
	catalogService, err := service.NewCatalogService(problemRepo, testRepo, validate, logger)
	if err != nil {
		log.Fatalf("failed to create catalog service: %v", err)
	}

	executionHandler := handler.NewExecutionHandler(executionService, validate, logger)
	problemHandler := handler.NewProblemHandler(catalogService, gradingService, submissionService, validate, logger)
	testHandler := handler.NewTestHandler(catalogService, gradingService, submissionService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExecutionHandler:  executionHandler,
		ProblemHandler:    problemHandler,
		TestHandler:       testHandler,
		SubmissionHandler: submissionHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildAdvisor picks the AI advisory backend. The advisory pipeline is
// best-effort, so a missing key just disables it.
func buildAdvisor(cfg config.Config, logger zerolog.Logger) ai.Advisor {
	switch cfg.AIProvider {
	case "anthropic":
		advisor, err := ai.NewAnthropicAdvisor(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey})
		if err != nil {
			logger.Warn().Err(err).Msg("advisory disabled")
			return nil
		}
		return advisor
	case "openai":
		advisor, err := ai.NewOpenAIAdvisor(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Logger: logger})
		if err != nil {
			logger.Warn().Err(err).Msg("advisory disabled")
			return nil
		}
		return advisor
	default:
		logger.Warn().Str("provider", cfg.AIProvider).Msg("unknown ai provider, advisory disabled")
		return nil
	}
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
