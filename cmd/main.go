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

	"github.com/Dosada05/checkmate-cup/brackets"
	"github.com/Dosada05/checkmate-cup/config"
	"github.com/Dosada05/checkmate-cup/db"
	"github.com/Dosada05/checkmate-cup/handlers"
	"github.com/Dosada05/checkmate-cup/middleware"
	"github.com/Dosada05/checkmate-cup/repositories"
	api "github.com/Dosada05/checkmate-cup/routes"
	"github.com/Dosada05/checkmate-cup/services"
	"github.com/Dosada05/checkmate-cup/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// @title                       Checkmate Cup API
// @version                     1.0
// @description                 Chess tournament backend: pairings, game finalization, standings and the practice bot.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

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

	if cfg.RunMigrations {
		version, err := db.Migrate(dbConn)
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations applied", slog.Uint64("version", uint64(version)))
	}

	// Архив партий в Cloudflare R2 (опционально)
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 game archive enabled", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("game archive disabled, R2 is not configured")
	}
	archive := storage.NewArchive(uploader)

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	transactor := repositories.NewSQLTransactor(dbConn, logger)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresTournamentPlayerRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	championRepo := repositories.NewPostgresChampionRepository(dbConn)
	roleRepo := repositories.NewPostgresRoleRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	accessService := services.NewAccessService(roleRepo, cfg.AdminKeyHash, logger)
	profileService := services.NewProfileService(transactor, profileRepo, roleRepo, logger)
	tournamentService := services.NewTournamentService(
		transactor,
		tournamentRepo,
		playerRepo,
		gameRepo,
		profileRepo,
		championRepo,
		roleRepo,
		archive,
		wsHub,
		logger,
	)
	gameService := services.NewGameService(transactor, gameRepo, playerRepo, profileRepo, archive, wsHub, logger)
	standingsService := services.NewStandingsService(tournamentRepo, playerRepo, gameRepo, profileRepo, logger)
	botService := services.NewBotService(services.BotConfig{
		APIKey:     cfg.LLMAPIKey,
		GatewayURL: cfg.LLMGatewayURL,
		Model:      cfg.LLMModel,
	}, nil, logger)
	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM_API_KEY is not set, chess bot will answer 503 and practice games use random moves")
	}
	logger.Info("services initialized")

	if cfg.BootstrapAdminUserID != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := accessService.EnsureAdmin(ctx, *cfg.BootstrapAdminUserID)
		cancel()
		if err != nil {
			logger.Error("failed to grant bootstrap admin role", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Инициализация обработчиков HTTP
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey, logger)
	h := api.Handlers{
		Admin:      handlers.NewAdminHandler(tournamentService, accessService),
		Game:       handlers.NewGameHandler(gameService),
		Bot:        handlers.NewBotHandler(botService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Standings:  handlers.NewStandingsHandler(standingsService),
		Profile:    handlers.NewProfileHandler(profileService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, authenticator, cfg.CORSAllowedOrigins, h)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера. WriteTimeout не ставим: websocket-соединения долгие,
	// для HTTP-маршрутов таймаут задаёт middleware.Timeout.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
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
