package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/remote"
	"fintrack/internal/services"

	_ "fintrack/internal/docs" // Import swagger docs
)

// @title           FinTrack API
// @version         1.0
// @description     Reference backend for the FinTrack offline-first sync client.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey APIKey
// @in header
// @name apikey

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("closing database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	if err := database.SeedDefaultCategories(db); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	// Initialize services
	svc := handlers.Services{
		Auth:         services.NewAuthService(db, services.NewLogMailer(logger.Named("mailer")), appConfig.OTPTTL),
		Transactions: services.NewTransactionService(db),
		Categories:   services.NewCategoryService(db),
		Profiles:     services.NewProfileService(db),
		Storage:      services.NewStorageService(db, remote.AvatarBucket),
		Audit:        services.NewAuditService(db),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handlers.NewRouter(svc, handlers.RouterConfig{
		AnonKey:     appConfig.AnonKey,
		Tokens:      middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur, appConfig.RefreshExpirationDur),
		RateLimiter: middleware.NewRateLimiter(appConfig.RateLimitPerSecond, appConfig.RateLimitBurst),
		Registry:    registry,
	})

	log.Infof("Starting FinTrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at %s/swagger/index.html", appConfig.PublicURL)
	return router.Run(":" + appConfig.Port)
}
