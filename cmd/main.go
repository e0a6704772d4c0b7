package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/courtmate/matchmaking-system/config"
	"github.com/courtmate/matchmaking-system/db"
	"github.com/courtmate/matchmaking-system/handlers"
	"github.com/courtmate/matchmaking-system/matching"
	"github.com/courtmate/matchmaking-system/middleware"
	"github.com/courtmate/matchmaking-system/repositories"
	api "github.com/courtmate/matchmaking-system/routes"
	"github.com/courtmate/matchmaking-system/services"
	"github.com/courtmate/matchmaking-system/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2), если сконфигурирован
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 not configured, court photo uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := matching.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(playerRepo)
	playerService := services.NewPlayerService(playerRepo)
	scheduleService := services.NewScheduleService(scheduleRepo, playerRepo)
	courtService := services.NewCourtService(courtRepo, uploader, logger)
	matchService := services.NewMatchService(matchRepo, scheduleRepo, playerRepo, wsHub, logger)

	matchmakingService, err := services.NewMatchmakingService(
		cfg.Matching,
		dbConn,
		playerRepo,
		scheduleRepo,
		courtRepo,
		matchRepo,
		wsHub,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize matchmaking service", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("services initialized")

	// Фоновый пересчёт предложений для предстоящих окон
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		logger.Info("auto-match sweep started",
			slog.Duration("interval", cfg.SweepInterval),
			slog.Int("horizon_hours", cfg.SweepHorizonHours))

		horizon := time.Duration(cfg.SweepHorizonHours) * time.Hour
		for {
			select {
			case <-ticker.C:
				if err := matchmakingService.AutoMatchSweep(sweepCtx, horizon); err != nil {
					logger.Error("auto-match sweep failed", slog.Any("error", err))
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// Инициализация обработчиков HTTP
	auth := middleware.NewAuth(cfg.JWTSecretKey)
	authHandler := handlers.NewAuthHandler(authService, auth)
	playerHandler := handlers.NewPlayerHandler(playerService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	courtHandler := handlers.NewCourtHandler(courtService)
	matchHandler := handlers.NewMatchHandler(matchService)
	matchmakingHandler := handlers.NewMatchmakingHandler(matchmakingService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		auth,
		authHandler,
		playerHandler,
		scheduleHandler,
		courtHandler,
		matchHandler,
		matchmakingHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopSweep()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
