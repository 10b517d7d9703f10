package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		ID:       uuid.New(),
		Username: username,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedKernel inserts a kernel with an explicit created_at so ordering is deterministic.
func SeedKernel(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID, parentID *uuid.UUID, title string, createdAt time.Time, tags ...string) *types.Kernel {
	tb.Helper()
	k := &types.Kernel{
		ID:          uuid.New(),
		Title:       title,
		Description: "seed",
		AuthorID:    authorID,
		ParentID:    parentID,
		Tags:        types.Tags(tags),
		License:     types.LicenseOpen,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if k.Tags == nil {
		k.Tags = types.Tags{}
	}
	if err := tx.WithContext(ctx).Omit("Author", "Parent").Create(k).Error; err != nil {
		tb.Fatalf("seed kernel: %v", err)
	}
	return k
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
