package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/config"
	"github.com/Dan9191/autosmc/internal/handler"
	"github.com/Dan9191/autosmc/internal/integrations/bcb"
	"github.com/Dan9191/autosmc/internal/integrations/fipe"
	"github.com/Dan9191/autosmc/internal/middleware"
	"github.com/Dan9191/autosmc/internal/repository"
	"github.com/Dan9191/autosmc/internal/scheduler"
	"github.com/Dan9191/autosmc/internal/service"
	"github.com/Dan9191/autosmc/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to load .env: %v", err)
	}

	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Lookup cache
	var cache repository.Cache
	var jobs scheduler.Jobs
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr)
		defer redisCache.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisCache.Ping(ctx)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to ping redis at %s: %v", cfg.RedisAddr, err)
		}
		cache = redisCache
		logger.Infof("Using redis lookup cache at %s", cfg.RedisAddr)
	} else {
		memoryCache := repository.NewMemoryCache()
		cache = memoryCache
		jobs.Cache = memoryCache
	}

	// Initialize layers
	sessions := repository.NewSessionRepositoryMemory()
	fipeClient := fipe.NewClient(cfg, cache, logger)
	selector := service.NewSelector(fipeClient, logger)

	opts := service.Options{
		City:         cfg.City,
		RateProvider: bcb.NewBCBClient(cfg, logger),
	}
	if cfg.MailEnabled() {
		opts.Mailer = email.NewSender(cfg, logger)
	} else {
		logger.Info("SMTP_HOST not set, report mailing disabled")
	}
	svc := service.NewService(selector, sessions, cfg.Rates, opts, logger)

	// Housekeeping
	jobs.Sessions = sessions
	jobs.SessionTTL = cfg.SessionTTL
	jobs.Catalog = svc
	sched, err := scheduler.New(jobs, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer rateLimiter.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Logging(logger), middleware.RateLimit(rateLimiter))
	handler.NewHandler(svc, logger).Register(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s for %s", addr, cfg.City)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Errorf("Server failed: %v", err)
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	sched.Stop(ctx)
	logger.Info("Server exited")
}
