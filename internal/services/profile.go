package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/worldkernel-backend/internal/data/repos"
	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type ProfileService interface {
	GetByUsername(ctx context.Context, username string) (*types.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Profile, error)
	// GetByIDs returns profiles keyed by id. Unknown ids are absent.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*types.Profile, error)
	Me(ctx context.Context, rd *ctxutil.RequestData) (*types.Profile, error)
}

type profileService struct {
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewProfileService(log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	return &profileService{log: log.With("service", "ProfileService"), profileRepo: profileRepo}
}

func (ps *profileService) GetByUsername(ctx context.Context, username string) (*types.Profile, error) {
	p, err := ps.profileRepo.GetByUsername(dbctx.Context{Ctx: ctx}, username)
	if err != nil {
		return nil, storeError("load profile", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile %q: %w", username, pkgerrors.ErrNotFound)
	}
	return p, nil
}

func (ps *profileService) GetByID(ctx context.Context, id uuid.UUID) (*types.Profile, error) {
	p, err := ps.profileRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, storeError("load profile", err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", id, pkgerrors.ErrNotFound)
	}
	return p, nil
}

func (ps *profileService) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*types.Profile, error) {
	rows, err := ps.profileRepo.GetByIDs(dbctx.Context{Ctx: ctx}, uniqueIDs(ids))
	if err != nil {
		return nil, storeError("load profiles", err)
	}
	out := make(map[uuid.UUID]*types.Profile, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (ps *profileService) Me(ctx context.Context, rd *ctxutil.RequestData) (*types.Profile, error) {
	if !rd.Authenticated() {
		return nil, fmt.Errorf("me: %w", pkgerrors.ErrUnauthorized)
	}
	return ps.GetByID(ctx, rd.UserID)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
