package profile

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, p *types.Profile) (*types.Profile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(dbc dbctx.Context, p *types.Profile) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (pr *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	results := []*types.Profile{}
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns nil, nil when the profile does not exist.
func (pr *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	rows, err := pr.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetByUsername returns nil, nil when the username is unknown.
func (pr *profileRepo) GetByUsername(dbc dbctx.Context, username string) (*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	var rows []*types.Profile
	if err := transaction.WithContext(dbc.Ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
