package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/worldkernel-backend/internal/data/repos"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type Repos struct {
	Profile        repos.ProfileRepo
	UserCredential repos.UserCredentialRepo
	UserToken      repos.UserTokenRepo
	Kernel         repos.KernelRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile:        repos.NewProfileRepo(db, log),
		UserCredential: repos.NewUserCredentialRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Kernel:         repos.NewKernelRepo(db, log),
	}
}
