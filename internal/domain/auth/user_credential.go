package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/worldkernel-backend/internal/domain/profile"
)

// UserCredential holds login secrets, kept out of the public profile row.
type UserCredential struct {
	ProfileID    uuid.UUID        `gorm:"type:uuid;primaryKey;column:profile_id" json:"profile_id"`
	Profile      *profile.Profile `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProfileID;references:ID" json:"-"`
	Email        string           `gorm:"uniqueIndex;not null;column:email" json:"-"`
	PasswordHash string           `gorm:"not null;column:password_hash" json:"-"`
	CreatedAt    time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserCredential) TableName() string { return "user_credential" }
