package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"field-capture-gateway/config"
	httpHandler "field-capture-gateway/internal/adapter/http/handler"
	pgStorage "field-capture-gateway/internal/adapter/storage/postgres"
	redisStorage "field-capture-gateway/internal/adapter/storage/redis"
	"field-capture-gateway/internal/core/domain"
	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/internal/service"
	"field-capture-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Field Capture Gateway")

	if cfg.Auth.APIKey == "" || cfg.Auth.SharedSecret == "" {
		log.Fatal().Msg("auth.api_key and auth.shared_secret must be configured")
	}

	ctx := context.Background()

	// Initialize Redis client (primary state store)
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	kv := redisStorage.NewKVStore(rdb)
	healthCheckers := []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)}

	// Initialize optional PostgreSQL delivery archive
	var archive ports.DeliveryArchive
	if cfg.Database.Enabled {
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		archive = pgStorage.NewDeliveryRepo(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
		log.Info().Msg("PostgreSQL delivery archive enabled")
	}

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	credential := domain.SigningCredential{
		APIKey: cfg.Auth.APIKey,
		Secret: cfg.Auth.SharedSecret,
	}
	credRegistry := service.NewStaticCredentialRegistry(credential)

	// Initialize business services
	authSvc := service.NewOperatorAuthService(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash, hashSvc, tokenSvc, log)
	fieldSvc := service.NewFieldService(kv, log)
	presetSvc := service.NewPresetService(kv, fieldSvc, log)

	webhookSvc := service.NewWebhookService(
		sigSvc,
		credential,
		fieldSvc,
		archive,
		&http.Client{Timeout: cfg.Webhook.Timeout},
		cfg.Webhook.PacingDelay,
		log,
	)
	webhookSvc.Start()
	defer webhookSvc.Stop()

	captureSvc := service.NewCaptureService(fieldSvc, service.NewResultMatcher(), webhookSvc, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		FieldSvc:        fieldSvc,
		PresetSvc:       presetSvc,
		CaptureSvc:      captureSvc,
		CredRegistry:    credRegistry,
		SigSvc:          sigSvc,
		TokenSvc:        tokenSvc,
		DeliveryArchive: archive,
		HealthCheckers:  healthCheckers,
		FreshnessWindow: cfg.Auth.FreshnessWindow,
		Logger:          log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
