// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the tagpress blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tagpress/internal/blog"
	"tagpress/internal/cache"
	"tagpress/internal/config"
	"tagpress/internal/database"
	"tagpress/internal/handlers"
	"tagpress/internal/middleware"
	"tagpress/internal/router"
	"tagpress/internal/session"
	"tagpress/internal/storage"
	"tagpress/internal/store"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	dotenvErr := godotenv.Load()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"dotenv", dotenvErr == nil,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions and the public page cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	deps := blog.Deps{
		Posts:      postStore,
		Tags:       store.NewTagStore(db),
		Categories: store.NewCategoryStore(db),
		Comments:   store.NewCommentStore(db),
		Tx:         blog.StoreTx(postStore),
		Pages:      pageCache,
		Events:     store.NewCacheLogStore(db),
	}

	// S3 storage is optional; without it uploads are rejected.
	if cfg.StorageEnabled() {
		files, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if files != nil {
			deps.Files = files
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		}
	}
	if deps.Files == nil {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	svc := blog.New(deps)

	authLimiter := middleware.NewSharedRateLimiter(valkeyClient, cfg.AuthRateLimit, time.Minute)

	r := router.New(sessionStore,
		handlers.NewAuth(sessionStore, userStore),
		handlers.NewAuthor(svc),
		handlers.NewPublic(svc, pageCache),
		router.Options{
			SecureCookies:  cfg.SecureCookies(),
			AuthLimiter:    authLimiter,
			AllowedOrigins: cfg.CORSOrigins,
		},
	)

	// WriteTimeout covers large multipart uploads relayed to S3.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
