package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stylShop/app/echo-server/router"
	"stylShop/business/catalog"
	"stylShop/business/personalize"
	"stylShop/internal/middleware"
	psqlRepo "stylShop/internal/repository/postgres"
	redisRepo "stylShop/internal/repository/redis"
	"stylShop/internal/rest"
	"stylShop/pkg/config"
	"stylShop/pkg/database"
	redisdb "stylShop/pkg/database/redis"
	"stylShop/pkg/logger"
	"stylShop/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Styl personalization API", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := psqlRepo.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Init repo
	productsRepo := psqlRepo.NewProductRepository(db)
	var profileRepo personalize.ProfileRepository = psqlRepo.NewAffinityProfileRepository(db)

	redisClient, err := redisdb.NewRedisClient(cfg)
	switch {
	case errors.Is(err, redisdb.ErrRedisDisabled):
		logger.Info("Redis not configured, profile cache disabled")
	case err != nil:
		logger.Warn("Redis unavailable, profile cache disabled", "error", err)
	default:
		profileRepo = redisRepo.NewAffinityProfileCache(redisClient, profileRepo, cfg.Redis.ProfileTTL)
		defer func() {
			if err := redisdb.CloseRedisClient(redisClient); err != nil {
				logger.Error("Failed to close redis", "error", err)
			}
		}()
	}

	// Init service
	opts := []personalize.Option{}
	if cfg.Personalize.PersistMode == string(personalize.PersistAsync) {
		opts = append(opts, personalize.WithWriteBehind(cfg.Personalize.RetryInterval))
	}
	personalizeService := personalize.NewService(profileRepo, personalize.Config{
		HalfLife:        cfg.Personalize.HalfLife,
		GlobalDecay:     cfg.Personalize.GlobalDecay,
		ExplorationRate: cfg.Personalize.ExplorationRate,
	}, opts...)
	defer personalizeService.Close()

	catalogService := catalog.NewService(productsRepo, catalog.Config{
		Timeout: cfg.Catalog.Timeout,
		Limit:   cfg.Catalog.Limit,
	})

	// Init handler
	personalizeHandler := rest.NewPersonalizeHandler(personalizeService, catalogService)
	productHandler := rest.NewProductHandler(catalogService)

	metrics.Init()

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderRequestID},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":          "ok",
			"catalog_breaker": catalogService.BreakerState(),
		})
	})

	// Setup routes
	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	adminOnly := middleware.AdminOnly()

	api := e.Group("/api/v1")
	router.SetupPersonalizeRoutes(api, personalizeHandler, authRequired)
	router.SetupProductRoutes(api, productHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
