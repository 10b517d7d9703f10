package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/worldkernel-backend/internal/http/handlers"
	httpMW "github.com/yungbote/worldkernel-backend/internal/http/middleware"
	"github.com/yungbote/worldkernel-backend/internal/observability"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

const (
	routeHealth  = "/healthcheck"
	routeMetrics = "/metrics"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Metrics        *observability.Metrics
	LoginLimiter   httpMW.AttemptLimiter

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler       *httpH.AuthHandler
	KernelHandler     *httpH.KernelHandler
	ProfileHandler    *httpH.ProfileHandler
	NavigationHandler *httpH.NavigationHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, routeHealth, routeMetrics))
	r.Use(httpMW.Metrics(cfg.Metrics, routeMetrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Timeout(cfg.RequestTimeout))

	// Health
	if cfg.HealthHandler != nil {
		r.GET(routeHealth, cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET(routeMetrics, gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	optional := func(c *gin.Context) { c.Next() }
	require := optional
	if cfg.AuthMiddleware != nil {
		optional = cfg.AuthMiddleware.OptionalAuth()
		require = cfg.AuthMiddleware.RequireAuth()
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", httpMW.RateLimit(cfg.Log, cfg.LoginLimiter, "login"), cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		if cfg.NavigationHandler != nil {
			api.GET("/nav", optional, cfg.NavigationHandler.State)
		}

		// Kernels (public reads)
		if cfg.KernelHandler != nil {
			api.GET("/kernels", cfg.KernelHandler.Feed)
			api.GET("/kernels/:id", optional, cfg.KernelHandler.Detail)
		}

		if cfg.ProfileHandler != nil {
			api.GET("/profiles/:username", cfg.ProfileHandler.GetProfile)
			api.GET("/tags/:tag", cfg.ProfileHandler.GetTag)
		}
	}

	protected := api.Group("/")
	protected.Use(require)
	{
		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Kernels (writes and forms)
		if cfg.KernelHandler != nil {
			protected.GET("/forms/kernel", cfg.KernelHandler.CreateForm)
			protected.POST("/kernels", cfg.KernelHandler.Create)
			protected.GET("/kernels/:id/fork", cfg.KernelHandler.ForkForm)
			protected.POST("/kernels/:id/fork", cfg.KernelHandler.Fork)
			protected.GET("/kernels/:id/edit", cfg.KernelHandler.EditForm)
			protected.PUT("/kernels/:id", cfg.KernelHandler.Update)
			protected.DELETE("/kernels/:id", cfg.KernelHandler.Delete)
		}
	}

	return r
}
