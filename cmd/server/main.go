package main

import (
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/qrtrack/go-qr-tracker/pkg/adapters/cache"
	"github.com/qrtrack/go-qr-tracker/pkg/adapters/handler"
	"github.com/qrtrack/go-qr-tracker/pkg/adapters/qr"
	"github.com/qrtrack/go-qr-tracker/pkg/adapters/repository/sqlite"
	"github.com/qrtrack/go-qr-tracker/pkg/config"
	"github.com/qrtrack/go-qr-tracker/pkg/core/services"
	"github.com/qrtrack/go-qr-tracker/pkg/ports"
)

func main() {
	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Optional redirect-path cache
	var linkCache ports.LinkCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPass, 0, time.Hour)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rc.Close()
		linkCache = rc
	}

	// Initialize Service
	encoder := qr.NewEncoder(cfg.QRSize)
	service := services.NewLinkService(repo, encoder, linkCache, cfg.BaseURL)

	// Initialize Router
	mux := handler.NewRouter(service)
	if cfg.SentryDSN != "" {
		mux = sentryhttp.New(sentryhttp.Options{}).Handle(mux)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
