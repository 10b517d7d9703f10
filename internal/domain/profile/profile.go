package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public identity of an account. ID equals the token subject.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	DisplayName *string   `gorm:"column:display_name" json:"display_name"`
	Bio         *string   `gorm:"column:bio" json:"bio"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }
