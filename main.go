// Package main provides the main entry point for the talent distribution engine
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/qsr-platform/talent-distribution/app/handlers"
	"github.com/qsr-platform/talent-distribution/app/middleware"
	"github.com/qsr-platform/talent-distribution/app/router"
	"github.com/qsr-platform/talent-distribution/app/scheduler"
	"github.com/qsr-platform/talent-distribution/app/services"
	businessflow "github.com/qsr-platform/talent-distribution/business_flow"
	"github.com/qsr-platform/talent-distribution/config"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting talent distribution engine...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initializeLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger through rotating files when
// configured. Fiber's access log is configured separately in the router.
func initializeLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(rotator)
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.DefaultTTL)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Make sure the configured fallback channels exist as real rows
	if err := ensureDefaultChannels(db, cfg.Distribution); err != nil {
		return nil, err
	}

	// Initialize repositories
	channelRepo := repository.NewChannelRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	contractRepo := repository.NewContractRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	channelStatRepo := repository.NewChannelStatRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Initialize services
	notificationService := services.NewNotificationService(services.NewMockNotificationProvider())

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	routingFlow := businessflow.NewRoutingFlow(
		channelRepo,
		visitRepo,
		businessflow.NewTrafficClassifier(cfg.Distribution.ExtraPaidSearchHints),
		businessflow.NewStickyBucketAssigner(),
		rc,
		cfg.Distribution,
	)

	assignmentFlow := businessflow.NewAssignmentFlow(
		db,
		channelRepo,
		candidateRepo,
		assignmentRepo,
		channelStatRepo,
		activityRepo,
		cfg.Distribution,
	)

	lifecycleFlow := businessflow.NewLifecycleFlow(
		db,
		candidateRepo,
		bookingRepo,
		contractRepo,
		activityRepo,
		notificationService,
	)

	ruleFlow := businessflow.NewChannelRuleFlow(
		db,
		channelRepo,
		activityRepo,
		rc,
	)

	statsFlow := businessflow.NewStatsFlow(
		channelRepo,
		assignmentRepo,
		bookingRepo,
		contractRepo,
		visitRepo,
		channelStatRepo,
	)

	// Initialize handlers
	routingHandler := handlers.NewRoutingHandler(routingFlow, cfg.Distribution, cfg.Security)
	distributionHandler := handlers.NewDistributionHandler(assignmentFlow, ruleFlow, statsFlow)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycleFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		routingHandler,
		distributionHandler,
		lifecycleHandler,
		authMiddleware,
	)

	if cfg.Distribution.AssignmentTTL > 0 {
		sweeper := scheduler.NewAssignmentSweeper(assignmentFlow, cfg.Distribution.SweepInterval)
		stopSweeper := sweeper.Start(context.Background())
		stopFuncs = append(stopFuncs, stopSweeper)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureDefaultChannels creates a channel row for every configured fallback
// slug that does not exist yet. New rows start with equal weights so the
// bootstrap distribution matches the uniform fallback table.
func ensureDefaultChannels(db *gorm.DB, cfg config.DistributionConfig) error {
	channelRepo := repository.NewChannelRepository(db)

	for _, slug := range cfg.DefaultChannels {
		existing, err := channelRepo.BySlug(context.Background(), slug)
		if err != nil {
			return fmt.Errorf("failed to look up channel %s: %w", slug, err)
		}
		if existing != nil {
			continue
		}

		channel := &models.Channel{
			Slug:           slug,
			Name:           slug,
			GoogleWeight:   1,
			OtherWeight:    1,
			IsActive:       true,
			AutoDistribute: true,
		}
		if err := channelRepo.Save(context.Background(), channel); err != nil {
			return fmt.Errorf("failed to create channel %s: %w", slug, err)
		}
		log.Printf("Created default channel %s", slug)
	}

	return nil
}
