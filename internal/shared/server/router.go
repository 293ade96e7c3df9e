package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/conversations"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/qa"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/telemetry"
)

const (
	healthPath  = "/api/v1/health"
	metricsPath = "/metrics"
)

// RouterDeps carries the handlers and shared resources the router mounts.
type RouterDeps struct {
	Config              config.Config
	JWTSecret           []byte
	DB                  *sql.DB
	DocumentHandler     *documents.Handler
	QAHandler           *qa.Handler
	ConversationHandler *conversations.Handler
	RateLimiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.JWTSecret, healthPath, metricsPath),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRateLimitRules(),
			GroupFor: middleware.LLMGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.DB))
	registerMeRoutes(api)
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.QAHandler != nil {
		deps.QAHandler.RegisterRoutes(api)
	}
	if deps.ConversationHandler != nil {
		deps.ConversationHandler.RegisterRoutes(api)
	}

	return r
}

func healthHandler(sqlDB *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sqlDB == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true, "db": "memory"})
			return
		}
		if err := db.Ping(c.Request.Context(), sqlDB, 2*time.Second); err != nil {
			telemetry.Warn("health.db.unreachable", map[string]any{"err": err})
			respond.Error(c, http.StatusServiceUnavailable, "db_unavailable", "database unreachable", nil)
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "db": "postgres"})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
