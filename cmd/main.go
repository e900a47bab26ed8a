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

	"github.com/fairwaylabs/clubtrack/cache"
	"github.com/fairwaylabs/clubtrack/config"
	"github.com/fairwaylabs/clubtrack/db"
	"github.com/fairwaylabs/clubtrack/handlers"
	"github.com/fairwaylabs/clubtrack/live"
	"github.com/fairwaylabs/clubtrack/repositories"
	api "github.com/fairwaylabs/clubtrack/routes"
	"github.com/fairwaylabs/clubtrack/scorecard"
	"github.com/fairwaylabs/clubtrack/services"
	"github.com/fairwaylabs/clubtrack/storage"
	"github.com/fairwaylabs/clubtrack/weather"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	// Object storage for scorecard images. Optional: without credentials the
	// extraction endpoint still works, it just skips archiving the image.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
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
		logger.Warn("R2 storage not configured, scorecard images will not be archived")
	}

	weatherClient, err := weather.NewOpenMeteoClient(weather.OpenMeteoClientConfig{
		ArchiveBaseURL:   cfg.WeatherAPIBaseURL,
		GeocodingBaseURL: cfg.GeocodingAPIBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize weather client", slog.Any("error", err))
		os.Exit(1)
	}

	extractor := scorecard.NewGeminiExtractor(scorecard.GeminiExtractorConfig{
		BaseURL: cfg.VisionAPIBaseURL,
		APIKey:  cfg.VisionAPIKey,
	})

	hub := live.NewHub()
	go hub.Run()
	logger.Info("live hub started")

	viewCache := cache.NewMemoryCache()

	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	courseRepo := repositories.NewPostgresCourseRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	squadRepo := repositories.NewPostgresSquadRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewDefaultAuthService(profileRepo)
	profileService := services.NewProfileService(profileRepo)
	adminService := services.NewAdminService(profileRepo)
	courseService := services.NewCourseService(courseRepo)
	squadService := services.NewSquadService(squadRepo)
	roundService := services.NewRoundService(courseRepo, roundRepo, weatherClient, viewCache, hub, logger)
	dashboardService := services.NewDashboardService(roundRepo, viewCache)
	scorecardService := services.NewScorecardService(extractor, uploader, logger)
	accessGate := services.NewAccessGate(profileRepo, cfg.AccessGateFailOpen)
	logger.Info("services initialized")

	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Profile:   handlers.NewProfileHandler(profileService),
		Round:     handlers.NewRoundHandler(roundService),
		Course:    handlers.NewCourseHandler(courseService),
		Squad:     handlers.NewSquadHandler(squadService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Scorecard: handlers.NewScorecardHandler(scorecardService),
		Admin:     handlers.NewAdminHandler(adminService),
		WebSocket: handlers.NewWebSocketHandler(hub),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, accessGate, cfg.JWTSecretKey, cfg.CORSAllowedOrigins)
	logger.Info("routes configured")

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
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
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
