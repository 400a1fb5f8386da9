package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/haircarelog/haircarelog-api/docs"
	"github.com/haircarelog/haircarelog-api/internal/adapters/handler/http/middleware"
	"github.com/haircarelog/haircarelog-api/internal/core/services"
	"github.com/haircarelog/haircarelog-api/internal/platform/logger"
)

type RouterDependencies struct {
	AuthHandler   *AuthHandler
	LogHandler    *LogHandler
	UserHandler   *UserHandler
	ReportHandler *ReportHandler
	TokenService  *services.TokenService

	// DB and Redis are optional; nil reports the dependency as disabled.
	DB    *sqlx.DB
	Redis *redis.Client

	Log                      *logger.Logger
	CORSAllowedOrigins       []string
	RateLimitPerMinute       int
	ReportRateLimitPerMinute int
	StartTime                time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	if len(deps.CORSAllowedOrigins) > 0 {
		router.Use(middleware.CORS(deps.CORSAllowedOrigins))
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	if deps.Redis != nil && deps.RateLimitPerMinute > 0 {
		apiV1.Use(middleware.RateLimiterMiddleware(deps.Redis, "api", deps.RateLimitPerMinute, time.Minute, log))
	}

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))

	deps.AuthHandler.RegisterRoutes(apiV1, protected)
	deps.LogHandler.RegisterRoutes(protected)
	deps.UserHandler.RegisterRoutes(protected)

	var reportLimiters []gin.HandlerFunc
	if deps.Redis != nil && deps.ReportRateLimitPerMinute > 0 {
		reportLimiters = append(reportLimiters,
			middleware.RateLimiterMiddleware(deps.Redis, "report", deps.ReportRateLimitPerMinute, time.Minute, log))
	}
	deps.ReportHandler.RegisterRoutes(protected, reportLimiters...)

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
