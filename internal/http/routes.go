package http

import (
	"net/http"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewEngine returns a gin engine with the shared middleware stack.
func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	return r
}

// RegisterRoutes mounts the API without auth or rate limiting.
func RegisterRoutes(r *gin.Engine, store repository.TaskStore, version string) {
	RegisterRoutesWithConfig(r, store, version, nil, nil)
}

// RegisterRoutesWithConfig mounts the API. cfg enables bearer auth on
// writes (JWT_SECRET) and the rate limits; limiter may be nil.
func RegisterRoutesWithConfig(r *gin.Engine, store repository.TaskStore, version string, cfg *config.Config, limiter *middleware.RedisLimiter) {
	h := handlers.NewHandler(service.NewTaskService(store))
	healthHandler := handlers.NewHealthHandler(store, version)

	var (
		issuer          *service.TokenIssuer
		apiRateLimit    int
		apiRateWindow   = time.Minute
		writeRateLimit  int
		writeRateWindow = time.Minute
	)
	if cfg != nil {
		if cfg.AuthEnabled() {
			var err error
			issuer, err = service.NewTokenIssuer(cfg.JWTSecret, service.DefaultTokenTTL)
			if err != nil {
				logger.Fatal("failed to init token issuer", "error", err)
			}
		}
		apiRateLimit = cfg.APIRateLimit
		apiRateWindow = time.Duration(cfg.APIRateWindow) * time.Second
		writeRateLimit = cfg.WriteRateLimit
		writeRateWindow = time.Duration(cfg.WriteRateWindow) * time.Second
	}

	// Service banner, health checks and metrics (no rate limiting)
	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	write := []gin.HandlerFunc{
		middleware.BearerAuth(issuer),
		limiter.BySubject(writeRateLimit, writeRateWindow),
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(limiter.ByIP(apiRateLimit, apiRateWindow))
	registerTaskRoutes(v1, h, write)

	// Unprefixed routes for deployments that mount the service at a path
	root := r.Group("")
	root.Use(limiter.ByIP(apiRateLimit, apiRateWindow))
	registerTaskRoutes(root, h, write)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.Handler, write []gin.HandlerFunc) {
	tasks := api.Group("/tasks")
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.POST("", append(write, h.CreateTask)...)
	tasks.PUT("/:id", append(write, h.UpdateTask)...)
	tasks.DELETE("/:id", append(write, h.DeleteTask)...)
}
