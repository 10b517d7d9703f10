package repos

import (
	"github.com/yungbote/worldkernel-backend/internal/data/repos/auth"
	"github.com/yungbote/worldkernel-backend/internal/data/repos/kernel"
	"github.com/yungbote/worldkernel-backend/internal/data/repos/profile"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type ProfileRepo = profile.ProfileRepo
type UserCredentialRepo = auth.UserCredentialRepo
type UserTokenRepo = auth.UserTokenRepo
type KernelRepo = kernel.KernelRepo

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return profile.NewProfileRepo(db, baseLog)
}

func NewUserCredentialRepo(db *gorm.DB, baseLog *logger.Logger) UserCredentialRepo {
	return auth.NewUserCredentialRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewKernelRepo(db *gorm.DB, baseLog *logger.Logger) KernelRepo {
	return kernel.NewKernelRepo(db, baseLog)
}
