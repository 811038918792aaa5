package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/movilstore/catalog-backend/config"
	"github.com/movilstore/catalog-backend/internal/app/controller"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	"github.com/movilstore/catalog-backend/internal/app/service"
	"github.com/movilstore/catalog-backend/internal/db"
	"github.com/movilstore/catalog-backend/internal/middleware"
	"github.com/movilstore/catalog-backend/internal/router"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"github.com/movilstore/catalog-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting catalog backend", map[string]interface{}{
		"environment":   cfg.Server.Environment,
		"port":          cfg.Server.Port,
		"log_level":     logLevel,
		"delete_policy": cfg.Catalog.DeletePolicy,
	})

	policy, err := service.ParseDeletePolicy(cfg.Catalog.DeletePolicy)
	if err != nil {
		logger.Fatal("Invalid delete policy", err)
	}

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
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it the read cache is a permanent miss
	var cache *redis.Cache
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			cache = redis.NewCache(redis.GetClient(), cfg.Catalog.CacheTTL)
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close redis connection", err)
				}
			}()
		}
	}

	// Initialize repositories
	attributeRepo := repository.NewAttributeRepository(db.GetDB(), cache)
	categoryRepo := repository.NewCategoryRepository(db.GetDB(), cache)
	productRepo := repository.NewProductRepository(db.GetDB())

	// Initialize services
	attributeService := service.NewAttributeService(attributeRepo, policy)
	categoryService := service.NewCategoryService(categoryRepo, policy)
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)

	// Initialize controllers
	productController := controller.NewProductController(productService, catalogService)
	attributeController := controller.NewAttributeController(attributeService)
	categoryController := controller.NewCategoryController(categoryService)

	// Initialize middleware
	if cfg.Identity.JWTSecret == "" {
		logger.Warn("IDENTITY_JWT_SECRET is empty, bearer credentials are not verified")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.Identity.JWTSecret)

	// Setup router
	r := router.NewRouter(
		productController,
		attributeController,
		categoryController,
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
