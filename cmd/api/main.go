package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chalyati/rental-api/internal/auth"
	"github.com/chalyati/rental-api/internal/config"
	"github.com/chalyati/rental-api/internal/database"
	"github.com/chalyati/rental-api/internal/handlers"
	middlewareCustom "github.com/chalyati/rental-api/internal/middleware"
	"github.com/chalyati/rental-api/internal/repositories"
	"github.com/chalyati/rental-api/internal/routes"
	"github.com/chalyati/rental-api/internal/services"
	pkghttp "github.com/chalyati/rental-api/pkg/http"
	pkglogger "github.com/chalyati/rental-api/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	adminRepo := repositories.NewAdminRepository(db)
	carRepo := repositories.NewCarRepository(db)
	galleryRepo := repositories.NewGalleryRepository(db)

	// Initialize token manager and audit logging
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	adminService := services.NewAdminService(
		adminRepo,
		tokenManager,
		logger,
		auditLogger,
		cfg.Auth.MaxLoginAttempts,
		cfg.Auth.LockoutDuration,
	)
	carService := services.NewCarService(carRepo, logger)
	galleryService := services.NewGalleryService(galleryRepo, logger)

	// Bootstrap the first admin account if configured
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := adminService.EnsureDefaultAdmin(
		bootstrapCtx,
		cfg.Bootstrap.AdminUsername,
		cfg.Bootstrap.AdminEmail,
		cfg.Bootstrap.AdminPassword,
	); err != nil {
		logger.Error("failed to ensure default admin", slog.Any("error", err))
	}
	bootstrapCancel()

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{}
	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Server.Env == "production",
		SameSite: "strict",
	}
	adminHandler := handlers.NewAdminHandler(adminService, ipConfig, cookieConfig, tokenManager)
	carHandler := handlers.NewCarHandler(carService)
	galleryHandler := handlers.NewGalleryHandler(galleryService)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, adminHandler, carHandler, galleryHandler, tokenManager, adminRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
