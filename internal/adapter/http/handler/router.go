package handler

import (
	"net/http"

	"transaction-orchestrator/internal/adapter/http/middleware"
	"transaction-orchestrator/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Metrics        http.Handler                  // nil = /metrics not served
	RateLimiter    *middleware.ClientRateLimiter // nil = rate limiting disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine of the ops API.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check (deep, pings every dependency)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	rl := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		rl = deps.RateLimiter.Middleware()
	}

	// --- JWT-authenticated routes (reporting clients) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	txHandler := NewTransactionHandler(deps.ReportingSvc)

	v1 := r.Group("/api/v1", jwtAuth, rl)
	{
		v1.GET("/transactions/:sourceOrderId", txHandler.History)
	}

	return r
}
