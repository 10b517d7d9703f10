package auth

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type UserCredentialRepo interface {
	Create(dbc dbctx.Context, cred *types.UserCredential) (*types.UserCredential, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.UserCredential, error)
	GetByProfileID(dbc dbctx.Context, profileID uuid.UUID) (*types.UserCredential, error)
}

type userCredentialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserCredentialRepo(db *gorm.DB, baseLog *logger.Logger) UserCredentialRepo {
	repoLog := baseLog.With("repo", "UserCredentialRepo")
	return &userCredentialRepo{db: db, log: repoLog}
}

func (r *userCredentialRepo) Create(dbc dbctx.Context, cred *types.UserCredential) (*types.UserCredential, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if err := transaction.WithContext(dbc.Ctx).Create(cred).Error; err != nil {
		return nil, err
	}
	return cred, nil
}

// GetByEmail returns nil, nil when no credential matches.
func (r *userCredentialRepo) GetByEmail(dbc dbctx.Context, email string) (*types.UserCredential, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.UserCredential
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userCredentialRepo) GetByProfileID(dbc dbctx.Context, profileID uuid.UUID) (*types.UserCredential, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.UserCredential
	if err := transaction.WithContext(dbc.Ctx).
		Where("profile_id = ?", profileID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
