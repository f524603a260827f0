package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/avatarctic/article-cache-api/configs"
	"github.com/avatarctic/article-cache-api/internal/application/services"
	"github.com/avatarctic/article-cache-api/internal/core/ports"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/db"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/health"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/httpserver"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/memcache"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/redis"
	"github.com/avatarctic/article-cache-api/internal/infrastructure/repositories"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// openCache returns the configured CacheStore. An unreachable Redis at startup
// is not fatal: the client reconnects on its own and reads fall back to the
// database until it does.
func openCache(cfg *config.Config, logger *logrus.Logger) ports.CacheStore {
	if cfg.Cache.Driver == config.CacheDriverMemory {
		logger.Info("Using in-process article cache")
		return memcache.New()
	}

	client, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unreachable at startup, serving uncached until it recovers")
		client = redis.NewClient(&cfg.Redis)
	} else {
		logger.Info("Connected to Redis successfully")
	}
	return redis.NewRedisCache(client, cfg.Cache.KeyPrefix)
}

func runServe() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info("Starting article API...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Run migrations
	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.WithError(err).Warn("Failed to run migrations")
	}

	cache := openCache(cfg, logger)
	defer func() {
		if err := cache.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close cache")
		}
	}()

	baseUserRepo := repositories.NewUserRepository(database, cfg.Database.QueryTimeout, logger)
	articleRepo := repositories.NewArticleRepository(database, cfg.Database.QueryTimeout, logger)

	// Author lookups on create go through the cache as well
	userRepo := repositories.NewCachingUserRepository(baseUserRepo, cache, cfg.Cache.TTL, cfg.Cache.OpTimeout)

	articleService := services.NewArticleService(articleRepo, userRepo, cache, services.ArticleCacheConfig{
		TTL:       cfg.Cache.TTL,
		OpTimeout: cfg.Cache.OpTimeout,
	}, httpserver.NewCacheMetrics(), logger)
	authService := services.NewAuthService(userRepo, &cfg.JWT, logger)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewCacheHealthChecker(cfg.Cache.Driver, cache),
	}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		ArticleService: articleService,
		AuthService:    authService,
		HealthCheckers: hcSlice,
	})

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
