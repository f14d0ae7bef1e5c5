package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/circlesoft/crm/internal/application/backup"
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	identityapp "github.com/circlesoft/crm/internal/application/identity"
	"github.com/circlesoft/crm/internal/application/notification"
	settingsapp "github.com/circlesoft/crm/internal/application/settings"
	"github.com/circlesoft/crm/internal/infrastructure/auth"
	"github.com/circlesoft/crm/internal/infrastructure/bootstrap"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/circlesoft/crm/internal/infrastructure/event"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/circlesoft/crm/internal/infrastructure/persistence"
	"github.com/circlesoft/crm/internal/infrastructure/storage"
	"github.com/circlesoft/crm/internal/infrastructure/telemetry"
	"github.com/circlesoft/crm/internal/interfaces/http/handler"
	"github.com/circlesoft/crm/internal/interfaces/http/middleware"
	"github.com/circlesoft/crm/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CRM server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tee logs to the OTLP collector when telemetry is enabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = loggerProvider.Bridge(log)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	metrics := telemetry.NewMetrics()

	// Open the key-value store (sqlite, postgres, redis or memory)
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}()
	log.Info("Store opened", zap.String("driver", store.Driver))

	blobs, err := storage.New(ctx, cfg.Backup, log)
	if err != nil {
		log.Warn("Backups disabled", zap.Error(err))
		blobs = nil
	}

	// Initialize repositories
	accountRepo := persistence.NewAccountRepository(store.KV)
	crmRepo := persistence.NewCRMRepository(store.KV, log)
	preferenceRepo := persistence.NewPreferenceRepository(store.KV)

	// Event bus carries received notifications to the banner hub
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	preferenceService := settingsapp.NewService(preferenceRepo, log)
	workspaces := crmapp.NewService(crmapp.Dependencies{
		Repository: crmRepo,
		Accounts:   accountRepo,
		Publisher:  eventBus,
		Observer:   metrics,
		Logger:     log,
		Policies: crmapp.NewPolicies(
			cfg.CRM.CustomerDeletePolicy,
			cfg.CRM.RevertFollowUpOnDelete,
			cfg.CRM.EnforceReferences,
		),
		MockSeed: cfg.CRM.MockSeed,
		Location: time.Local,
	})
	authService := identityapp.NewAuthService(
		accountRepo,
		crmRepo,
		auth.NewBcryptHasher(cfg.Security.BcryptCost),
		workspaces,
		cfg.CRM.SeedDemoUser,
		log,
	)
	if _, err := authService.Bootstrap(ctx); err != nil {
		log.Fatal("Failed to bootstrap accounts", zap.Error(err))
	}
	backupService := backup.NewService(workspaces, blobs, log)

	hub := notification.NewHub(preferenceService, notification.Options{
		Timeout: cfg.Notification.ToastTimeout,
		Limit:   cfg.Notification.ToastLimit,
		Logger:  log,
	})
	defer hub.Close()
	notificationHandler := notification.NewEventHandler(hub, metrics, log)
	eventBus.Subscribe(notificationHandler, notificationHandler.EventTypes()...)
	log.Info("Event handlers registered", zap.Strings("notification_events", notificationHandler.EventTypes()))

	// Token revocation survives restarts only with redis
	jwtService := auth.NewJWTService(cfg.JWT)
	var revoker auth.TokenRevoker = auth.NewInMemoryTokenRevoker()
	if store.Redis != nil {
		revoker = auth.NewRedisTokenRevoker(store.Redis, cfg.Redis.KeyPrefix)
	}

	// Set Gin mode
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Apply middleware stack in order:
	// 1. Request ID
	// 2. Recovery (catches panics)
	// 3. Request logging
	// 4. Tracing
	// 5. CORS
	// 6. Metrics
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.SpanAttributes(),
		middleware.CORSWithConfig(cors),
		middleware.Metrics(metrics),
	)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	guards := router.Guards{
		Authenticated: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Revoker:    revoker,
			Logger:     log,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		guards.AuthLimit = middleware.RateLimit(limiter)
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	// Initialize HTTP handlers
	clock := handler.Clock{Now: time.Now, Location: time.Local}
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService, jwtService, revoker),
		Profile:       handler.NewProfileHandler(workspaces, authService),
		Customers:     handler.NewCustomerHandler(workspaces),
		Inquiries:     handler.NewInquiryHandler(workspaces),
		Orders:        handler.NewOrderHandler(workspaces),
		Notifications: handler.NewNotificationHandler(workspaces, hub, preferenceService, clock),
		Reports:       handler.NewReportHandler(workspaces, preferenceService, clock),
		Search:        handler.NewSearchHandler(workspaces),
		Settings:      handler.NewSettingsHandler(preferenceService),
		Backup:        handler.NewBackupHandler(backupService),
		System:        handler.NewSystemHandler(cfg.App.Name, version, store),
	}

	r := router.NewRouter(engine)
	r.Register(router.Routes(handlers, guards)...)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
