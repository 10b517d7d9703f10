package domain

import (
	"github.com/yungbote/worldkernel-backend/internal/domain/auth"
	"github.com/yungbote/worldkernel-backend/internal/domain/kernel"
	"github.com/yungbote/worldkernel-backend/internal/domain/profile"
)

type Profile = profile.Profile
type UserCredential = auth.UserCredential
type UserToken = auth.UserToken

type Kernel = kernel.Kernel
type KernelFields = kernel.Fields
type Tags = kernel.Tags
type License = kernel.License

const (
	LicenseOpen        = kernel.LicenseOpen
	LicenseAttribution = kernel.LicenseAttribution
	LicensePermission  = kernel.LicensePermission
)
