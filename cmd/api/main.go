package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-plagiarism-api/internal/config"
	"github.com/noah-isme/gema-plagiarism-api/internal/database"
	"github.com/noah-isme/gema-plagiarism-api/internal/handler"
	"github.com/noah-isme/gema-plagiarism-api/internal/middleware"
	"github.com/noah-isme/gema-plagiarism-api/internal/repository"
	"github.com/noah-isme/gema-plagiarism-api/internal/router"
	"github.com/noah-isme/gema-plagiarism-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelBoot()

	db, err := database.ConnectPostgres(bootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(bootCtx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, report cache and redis events disabled")
			redisClient = nil
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, bus events disabled")
			natsConn = nil
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	reportRepo := repository.NewPlagiarismReportRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, studentRepo, activityService, validate, logger)
	plagiarismService := service.NewPlagiarismService(submissionRepo, reportRepo, activityService, redisClient, natsConn, service.PlagiarismConfig{
		Threshold:         cfg.Plagiarism.Threshold,
		MinSentenceLength: cfg.Plagiarism.MinSentenceLength,
		Workers:           cfg.Plagiarism.Workers,
		ReportCacheTTL:    cfg.Plagiarism.ReportCacheTTL,
		EventsChannel:     cfg.EventsChannel,
	}, logger)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	plagiarismHandler := handler.NewPlagiarismHandler(plagiarismService, validate, logger,
		middleware.RateLimit("plagiarism-check", cfg.Plagiarism.RateLimit, cfg.Plagiarism.RateWindow))

	probes := []handler.HealthProbe{{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.AllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: submissionHandler,
		PlagiarismHandler: plagiarismHandler,
		HealthProbes:      probes,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("nats drain failed")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
