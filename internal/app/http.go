package app

import (
	"github.com/yungbote/worldkernel-backend/internal/data/db"
	"github.com/yungbote/worldkernel-backend/internal/http"
	httpH "github.com/yungbote/worldkernel-backend/internal/http/handlers"
	httpMW "github.com/yungbote/worldkernel-backend/internal/http/middleware"
	"github.com/yungbote/worldkernel-backend/internal/observability"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Kernel     *httpH.KernelHandler
	Profile    *httpH.ProfileHandler
	Navigation *httpH.NavigationHandler
}

func wireHandlers(log *logger.Logger, pg *db.PostgresService, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(pg),
		Auth:       httpH.NewAuthHandler(s.Auth, s.Profile),
		Kernel:     httpH.NewKernelHandler(s.Kernel, s.Fork, s.Feed, s.KernelForm),
		Profile:    httpH.NewProfileHandler(s.Feed),
		Navigation: httpH.NewNavigationHandler(s.Navigation),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, s.Auth, cfg.LoginPath)}
}

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware, c Clients, metrics *observability.Metrics) *http.Server {
	rc := http.RouterConfig{
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		RequestTimeout:    cfg.RequestTimeout,
		Metrics:           metrics,
		AuthMiddleware:    mw.Auth,
		AuthHandler:       h.Auth,
		KernelHandler:     h.Kernel,
		ProfileHandler:    h.Profile,
		NavigationHandler: h.Navigation,
		HealthHandler:     h.Health,
	}
	if cfg.OtelEnabled {
		rc.ServiceName = cfg.ServiceName
	}
	if c.LoginLimiter != nil {
		rc.LoginLimiter = c.LoginLimiter
	}
	return http.NewServer(rc)
}
