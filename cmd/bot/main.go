package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/app"
	"github.com/autoescuela/reservas-bot/internal/config"
	"github.com/autoescuela/reservas-bot/internal/controller"
	"github.com/autoescuela/reservas-bot/internal/repository"
	"github.com/autoescuela/reservas-bot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting reservations bot",
		zap.String("environment", cfg.Environment),
		zap.String("api_base_url", cfg.APIBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewBotUserRepository(pool)
	codeRepo := repository.NewLinkCodeRepository(pool)
	userService := service.NewUserService(userRepo, codeRepo, cfg.AdminTelegramIDs, logger)

	backend := api.NewClient(cfg.APIBaseURL, cfg.APIToken, logger)
	sessions := service.NewSessions()

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(b, userService, backend, sessions, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	scheduler := app.NewScheduler(backend, botController, cfg.AdminTelegramIDs, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot stopped")
}
