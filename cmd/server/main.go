package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prop-journal/internal/cache"
	"github.com/prop-journal/internal/config"
	"github.com/prop-journal/internal/handler"
	"github.com/prop-journal/internal/middleware"
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/notify"
	"github.com/prop-journal/internal/repository"
	"github.com/prop-journal/internal/service"
	"github.com/prop-journal/internal/worker"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// dataStore bundles the repositories into the persistence contract the
// commit pipeline consumes
type dataStore struct {
	*repository.AccountRepository
	*repository.TradeRepository
	*repository.CopyGroupRepository
}

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize rotating file logger
	if err := middleware.InitLogger(cfg.Server.LogDir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis
	rdb := initRedis(cfg)

	// Auto migrate database
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	copyGroupRepo := repository.NewCopyGroupRepository(db)

	// Stats cache backed by Redis
	statsCache := cache.NewStatsCache(rdb, time.Duration(cfg.Stats.CacheTTLSeconds)*time.Second)

	// Notification hub pushes commit and resolution outcomes over WebSocket
	hub := notify.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	accountService := service.NewAccountService(accountRepo, tradeRepo, statsCache)
	tradeService := service.NewTradeService(tradeRepo, accountRepo, statsCache)
	copyGroupService := service.NewCopyGroupService(copyGroupRepo, accountRepo)

	store := &dataStore{
		AccountRepository:   accountRepo,
		TradeRepository:     tradeRepo,
		CopyGroupRepository: copyGroupRepo,
	}
	commitService := service.NewCommitService(store, hub, statsCache)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	tradeHandler := handler.NewTradeHandler(commitService, tradeService, accountService)
	copyGroupHandler := handler.NewCopyGroupHandler(copyGroupService)
	resolutionHandler := handler.NewResolutionHandler(commitService)

	// Create Gin router
	router := gin.Default()

	// Add request logging middleware (logs all requests with error details)
	router.Use(middleware.RequestLoggerMiddleware())

	// Add CORS middleware
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
			"pipeline":   commitService.State(),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		authHandler.RegisterRoutes(v1)

		// Protected routes
		authMiddleware := middleware.AuthMiddleware(authService)
		accountHandler.RegisterRoutes(v1, authMiddleware)
		tradeHandler.RegisterRoutes(v1, authMiddleware)
		copyGroupHandler.RegisterRoutes(v1, authMiddleware)
		resolutionHandler.RegisterRoutes(v1, authMiddleware)
	}

	// WebSocket notifications
	router.GET("/ws", hub.HandleWS)

	// Background stats refresh keeps dashboard reads warm
	statsWorker := worker.NewStatsWorker(
		accountRepo,
		tradeRepo,
		statsCache,
		time.Duration(cfg.Stats.RefreshIntervalSeconds)*time.Second,
	)
	go statsWorker.Start()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background worker
	statsWorker.Stop()

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
	}

	log.Println("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Trade{},
		&models.CopyGroup{},
		&models.CopyMember{},
	)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
