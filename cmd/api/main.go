package main

import (
	"context"
	"fmt"
	stdlog "log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kuldeepjain-work/URLShortner/internal/config"
	"github.com/kuldeepjain-work/URLShortner/internal/handler"
	"github.com/kuldeepjain-work/URLShortner/internal/logger"
	"github.com/kuldeepjain-work/URLShortner/internal/middleware"
	"github.com/kuldeepjain-work/URLShortner/internal/repository/postgres"
	"github.com/kuldeepjain-work/URLShortner/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	loggerConfig := logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}

	if err := logger.Initialize(loggerConfig); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting URL Shortener service",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
	)

	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Error("Failed to setup database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	urlRepo := postgres.NewURLRepository(dbPool)

	if err := urlRepo.EnsureSchema(context.Background()); err != nil {
		log.Error("Failed to bootstrap schema", "error", err)
		os.Exit(1)
	}

	shortenerService := service.NewShortenerService(urlRepo)

	shortenerHandler := handler.NewShortenerHandler(shortenerService, cfg.Server.BaseURL)
	statsHandler := handler.NewStatsHandler(shortenerService)
	healthHandler := handler.NewHealthHandler(dbPool)

	router := setupRouter(shortenerHandler, statsHandler, healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, dbPool, log)
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := cfg.Database
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MinConns = int32(dbConfig.MinConns)
	poolConfig.MaxConns = int32(dbConfig.MaxConns)
	poolConfig.MaxConnLifetime = dbConfig.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}

	if err := dbPool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return dbPool, nil
}

func setupRouter(
	shortenerHandler *handler.ShortenerHandler,
	statsHandler *handler.StatsHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
	}))

	// health check
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)

	router.POST("/shorten", shortenerHandler.ShortenURL)
	router.GET("/stats", statsHandler.GetStats)
	router.GET("/stats/", statsHandler.GetStats)

	router.GET("/:shortCode", shortenerHandler.Redirect)
	router.DELETE("/:shortCode", shortenerHandler.Deactivate)

	return router
}

func gracefulShutdown(srv *http.Server, timeout time.Duration, dbPool *pgxpool.Pool, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	dbPool.Close()
	log.Info("Database connection closed")

	log.Info("Graceful shutdown completed")
}
