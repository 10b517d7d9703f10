package kernel

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/worldkernel-backend/internal/domain/profile"
	"gorm.io/gorm"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
	MaxTags           = 10
	MaxTagLen         = 30
)

// Kernel is a published world-building seed. AuthorID and ParentID are fixed at creation.
type Kernel struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string           `gorm:"type:varchar(200);not null;check:chk_kernel_title_len,char_length(title) <= 200" json:"title"`
	Description string           `gorm:"type:text;not null;default:'';check:chk_kernel_description_len,char_length(description) <= 5000" json:"description"`
	AuthorID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *profile.Profile `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"-"`
	ParentID    *uuid.UUID       `gorm:"type:uuid;index" json:"parent_id"`
	Parent      *Kernel          `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"-"`
	Tags        Tags             `gorm:"type:text[];not null;default:'{}';check:chk_kernel_tags_count,cardinality(tags) <= 10" json:"tags"`
	License     License          `gorm:"type:varchar(32);not null;default:'open'" json:"license"`
	CreatedAt   time.Time        `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Kernel) TableName() string { return "kernel" }

func (k *Kernel) IsFork() bool { return k != nil && k.ParentID != nil }

// Fields is the mutable subset accepted on create, update and fork.
type Fields struct {
	Title       string
	Description string
	Tags        Tags
	License     License
}
