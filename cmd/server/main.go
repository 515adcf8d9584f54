package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"licensekit.backend/internal/config"
	"licensekit.backend/internal/infrastructure/repositories"
	"licensekit.backend/internal/interfaces/http/handlers"
	"licensekit.backend/internal/interfaces/http/middleware"
	"licensekit.backend/internal/usecases"
	"licensekit.backend/pkg/jwt"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service for operator tokens
	jwtService := jwt.NewService(cfg.Operator.JWTSecret, cfg.Operator.TokenTTL)

	// Initialize repositories
	licenseRepo := repositories.NewLicenseRepository(db)
	activationRepo := repositories.NewActivationRepository(db)
	checksumRepo := repositories.NewKeyChecksumRepository(db)
	attemptRepo := repositories.NewAuthAttemptRepository(db)
	credentialRepo := repositories.NewApiCredentialRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize outbound webhook notifier
	notifier := usecases.NewWebhookNotifier(cfg.Webhook.Secret, cfg.Server.URL, cfg.Webhook.Timeout)

	// Initialize usecases
	activationUsecase := usecases.NewActivationUsecase(licenseRepo, activationRepo, checksumRepo, uow, notifier, cfg.Licensing.ChecksumSecret)
	transferUsecase := usecases.NewTransferUsecase(licenseRepo, activationRepo, uow, notifier, cfg.Licensing.TransferCooldown)
	licenseUsecase := usecases.NewLicenseUsecase(licenseRepo, checksumRepo, attemptRepo, uow, cfg.Licensing.DefaultActivationLimit, cfg.Licensing.DefaultTransferLimit, cfg.Licensing.ChecksumSecret)
	credentialUsecase := usecases.NewCredentialUsecase(credentialRepo, attemptRepo, cfg.Auth.FailedAttemptThreshold, cfg.Auth.FailedAttemptWindow)

	// Initialize handlers
	licenseHandler := handlers.NewLicenseHandler(activationUsecase, transferUsecase, licenseUsecase, cfg.Webhook.Secret)
	adminHandler := handlers.NewAdminHandler(licenseUsecase, transferUsecase, activationUsecase)
	credentialHandler := handlers.NewCredentialHandler(credentialUsecase)

	// Create middleware
	credentialAuth := middleware.CredentialAuthMiddleware(credentialUsecase)
	operatorAuth := middleware.OperatorAuthMiddleware(jwtService)
	limiter := redis.NewLimiter(redis.GetClient())
	validateLimiter := middleware.RateLimitMiddleware(limiter, "validate", cfg.RateLimit.ValidateLimit, cfg.RateLimit.ValidateWindow, middleware.LicenseKeyExtractor)
	deactivateLimiter := middleware.RateLimitMiddleware(limiter, "deactivate", cfg.RateLimit.DeactivateLimit, cfg.RateLimit.DeactivateWindow, middleware.LicenseKeyExtractor)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		licenseHandler:    licenseHandler,
		adminHandler:      adminHandler,
		credentialHandler: credentialHandler,
		credentialAuth:    credentialAuth,
		operatorAuth:      operatorAuth,
		validateLimiter:   validateLimiter,
		deactivateLimiter: deactivateLimiter,
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
	}()

	// Start server
	log.Printf("🚀 LicenseKit Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
