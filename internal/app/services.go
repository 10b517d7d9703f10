package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/worldkernel-backend/internal/observability"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Profile    services.ProfileService
	Kernel     services.KernelService
	Fork       services.ForkService
	Feed       services.FeedService
	KernelForm services.KernelFormService
	Navigation services.NavigationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	tx := services.NewGormTransactor(db)
	listing := cfg.Listing()

	profile := services.NewProfileService(log, r.Profile)
	kernel := services.NewKernelService(tx, log, r.Kernel, metrics)
	fork := services.NewForkService(tx, log, r.Kernel, metrics)

	return Services{
		Auth:       services.NewAuthService(tx, log, r.Profile, r.UserCredential, r.UserToken, cfg.Auth()),
		Profile:    profile,
		Kernel:     kernel,
		Fork:       fork,
		Feed:       services.NewFeedService(log, r.Kernel, profile, fork, listing),
		KernelForm: services.NewKernelFormService(log, kernel),
		Navigation: services.NewNavigationService(log, profile, cfg.LoginPath),
	}
}
