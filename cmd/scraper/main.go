package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/certiauth/ebay-sold-scraper/internal/api"
	"github.com/certiauth/ebay-sold-scraper/internal/browser"
	"github.com/certiauth/ebay-sold-scraper/internal/cache"
	"github.com/certiauth/ebay-sold-scraper/internal/config"
	"github.com/certiauth/ebay-sold-scraper/internal/ratelimit"
	"github.com/certiauth/ebay-sold-scraper/internal/scraper"
	"github.com/certiauth/ebay-sold-scraper/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Optional; env vars win over .env entries.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis result cache.
	var resultCache *cache.ResultCache
	if cfg.Redis.Addr != "" {
		resultCache, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second, logger)
		if err != nil {
			logger.Warn("result cache disabled", "error", err)
		} else {
			defer resultCache.Close()
		}
	}

	// Optional Postgres run history.
	var runStore *storage.RunStore
	if cfg.Database.Host != "" {
		runStore, err = storage.New(ctx, storage.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		}, logger)
		if err != nil {
			logger.Warn("run history storage disabled", "error", err)
		} else {
			defer runStore.Close()
		}
	}

	pacer := ratelimit.NewJitterPacer(
		time.Duration(cfg.Scraper.JitterMinMs)*time.Millisecond,
		time.Duration(cfg.Scraper.JitterMaxMs)*time.Millisecond,
	)

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Scraper.Headless

	svc, err := scraper.NewService(browser.NewSessionFactory(browserOpts), pacer, scraper.Options{
		BaseURL:         cfg.Scraper.BaseURL,
		SmokeURL:        cfg.Scraper.SmokeURL,
		ItemsPerPage:    cfg.Scraper.ItemsPerPage,
		ConditionFilter: cfg.Scraper.ConditionFilter,
		MaxAttempts:     cfg.Scraper.MaxAttempts,
		RetryBaseDelay:  time.Duration(cfg.Scraper.RetryBaseSec) * time.Second,
		NavTimeout:      time.Duration(cfg.Scraper.NavTimeoutSec) * time.Second,
		PerPageVisitCap: cfg.Scraper.PerPageVisitCap,
		USDToGBPRate:    cfg.Scraper.USDToGBPRate,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize scraper", "error", err)
		os.Exit(1)
	}

	handlers := api.NewHandlers(svc, resultCache, runStore, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", handlers.Index)
	r.Get("/health", handlers.Health)
	r.Get("/smoke", handlers.Smoke)
	r.Get("/scrape", handlers.Scrape)
	r.Get("/runs", handlers.Runs)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
		// Scrape runs hold the connection while the browser works.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
