package handler

import (
	"time"

	"field-capture-gateway/internal/adapter/http/middleware"
	"field-capture-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	FieldSvc        ports.FieldService
	PresetSvc       ports.PresetService
	CaptureSvc      ports.CaptureService
	CredRegistry    ports.CredentialRegistry
	SigSvc          ports.SignatureService
	TokenSvc        ports.TokenService
	DeliveryArchive ports.DeliveryArchive // nil = archive endpoints disabled
	HealthCheckers  []ports.HealthChecker
	FreshnessWindow time.Duration
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PathGuard(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies Redis, and PostgreSQL when configured)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// --- HMAC-authenticated routes (evaluator API) ---
	hmacAuth := middleware.HMACAuth(deps.CredRegistry, deps.SigSvc, deps.FreshnessWindow, deps.Logger)
	captureHandler := NewCaptureHandler(deps.CaptureSvc)
	events := v1.Group("/events/:domain", hmacAuth)
	{
		events.POST("/begin", captureHandler.Begin)
		events.POST("/results", captureHandler.Results)
		events.POST("/cancel", captureHandler.Cancel)
		events.POST("/error", captureHandler.Fail)
	}

	// --- JWT-authenticated routes (admin API) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	fieldHandler := NewFieldHandler(deps.FieldSvc)
	presetHandler := NewPresetHandler(deps.PresetSvc)

	domains := v1.Group("/domains/:domain", jwtAuth)
	{
		domains.GET("/fields", fieldHandler.List)
		domains.POST("/fields", fieldHandler.Create)
		domains.GET("/fields/validate", fieldHandler.Validate)
		domains.PATCH("/fields/:id", fieldHandler.Update)
		domains.DELETE("/fields/:id", fieldHandler.Delete)
		domains.GET("/fields/:id/deliveries", fieldHandler.DeliveryLog)
	}

	presets := v1.Group("/presets", jwtAuth)
	{
		presets.GET("", presetHandler.List)
		presets.POST("", presetHandler.Save)
		presets.POST("/:name/load", presetHandler.Load)
		presets.DELETE("/:name", presetHandler.Delete)
	}

	// --- Delivery archive (JWT-authenticated, optional) ---
	if deps.DeliveryArchive != nil {
		deliveryHandler := NewDeliveryHandler(deps.DeliveryArchive)
		domains.GET("/deliveries", deliveryHandler.ListByDomain)
	}

	return r
}
