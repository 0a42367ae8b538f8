package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authHandler "github.com/fytours/tourdash/internal/api/auth"
	dashboardHandler "github.com/fytours/tourdash/internal/api/dashboard"
	"github.com/fytours/tourdash/internal/config"
	kafkax "github.com/fytours/tourdash/internal/kafka"
	"github.com/fytours/tourdash/internal/middleware"
	authService "github.com/fytours/tourdash/internal/service/auth"
	dashboardService "github.com/fytours/tourdash/internal/service/dashboard"
	"github.com/fytours/tourdash/internal/snapshot"
	"github.com/fytours/tourdash/internal/store"
)

// Deps carries everything the routes need; main owns construction and
// shutdown of the shared clients.
type Deps struct {
	Cfg      config.Config
	DB       *store.DB
	Redis    *redis.Client
	Cache    *snapshot.Cache
	Holder   *snapshot.Holder
	Producer *kafkax.Producer
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(r *gin.Engine, log *zap.Logger, deps Deps) {
	r.Use(middleware.MetricsMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "FYT Admin Dashboard",
			"description": "Analytics backend for the Forever Young Tours admin dashboard: filtered bookings, KPIs, chart aggregates and workbook export.",
			"version":     "1.0.0",
			"endpoints":   []string{"/v1/health", "/v1/auth/login", "/v1/dashboard"},
		})
	})
	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Use(middleware.RedisRateLimit(deps.Redis, 50, 100))

	authSvc := authService.NewAuthService(log, deps.DB, deps.Cfg.JWTSigningSecret)
	dashSvc := dashboardService.NewService(log, deps.Holder)

	authHandler.NewAuthHandler(log, authSvc).Register(r)
	dashboardHandler.NewDashboardHandler(log, dashSvc, deps.Holder, deps.Cache, deps.Producer, deps.Cfg.JWTSigningSecret).Register(r)
}
