package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kinotiBot/PerfumesPlugApp/config"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/controller"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/service"
	"github.com/kinotiBot/PerfumesPlugApp/internal/db"
	"github.com/kinotiBot/PerfumesPlugApp/internal/middleware"
	"github.com/kinotiBot/PerfumesPlugApp/internal/router"
	"github.com/kinotiBot/PerfumesPlugApp/internal/scheduler"
	"github.com/kinotiBot/PerfumesPlugApp/internal/storage"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting PerfumesPlug Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.AutoMigrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the JWT blacklist. The server still runs without it,
	// logout just stops revoking tokens early.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Failed to connect to Redis, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	brandRepo := repository.NewBrandRepository(db.GetDB())
	perfumeRepo := repository.NewPerfumeRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	addressService := service.NewAddressService(addressRepo)
	catalogService := service.NewCatalogService(categoryRepo, brandRepo)
	perfumeService := service.NewPerfumeService(perfumeRepo)
	cartService := service.NewCartService(cartRepo, perfumeRepo)
	orderService := service.NewOrderService(
		orderRepo,
		cartRepo,
		perfumeRepo,
		addressRepo,
		cfg.Checkout,
		db.GetDB(),
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	addressController := controller.NewAddressController(addressService)
	catalogController := controller.NewCatalogController(catalogService)
	perfumeController := controller.NewPerfumeController(perfumeService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	uploadController := controller.NewUploadController(storage.NewS3Storage(&cfg.S3))

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		addressController,
		catalogController,
		perfumeController,
		cartController,
		orderController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Nightly prune of abandoned carts
	cartScheduler := scheduler.NewCartScheduler(cartRepo)
	if err := cartScheduler.Start(); err != nil {
		logger.Warn("Failed to start cart scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cartScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
