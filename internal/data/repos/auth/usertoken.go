package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

// UserTokenRepo stores login sessions: one row per issued access/refresh pair.
type UserTokenRepo interface {
	Create(dbc dbctx.Context, token *types.UserToken) error
	// GetByAccessToken returns nil when the session was revoked or never existed.
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error)
	// TakeRefreshToken deletes the session owning refreshToken and returns it, so a
	// refresh token can be redeemed at most once. nil when unknown.
	TakeRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error)
	DeleteByAccessToken(dbc dbctx.Context, accessToken string) (int64, error)
	DeleteExpired(dbc dbctx.Context, userID uuid.UUID, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) conn(dbc dbctx.Context) *gorm.DB {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Ctx)
}

func (r *userTokenRepo) Create(dbc dbctx.Context, token *types.UserToken) error {
	return r.conn(dbc).Omit("Profile").Create(token).Error
}

func (r *userTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error) {
	if accessToken == "" {
		return nil, nil
	}
	var rows []types.UserToken
	if err := r.conn(dbc).Where("access_token = ?", accessToken).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *userTokenRepo) TakeRefreshToken(dbc dbctx.Context, refreshToken string) (*types.UserToken, error) {
	if refreshToken == "" {
		return nil, nil
	}
	var rows []types.UserToken
	res := r.conn(dbc).
		Clauses(clause.Returning{}).
		Where("refresh_token = ?", refreshToken).
		Delete(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *userTokenRepo) DeleteByAccessToken(dbc dbctx.Context, accessToken string) (int64, error) {
	if accessToken == "" {
		return 0, nil
	}
	res := r.conn(dbc).Where("access_token = ?", accessToken).Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}

func (r *userTokenRepo) DeleteExpired(dbc dbctx.Context, userID uuid.UUID, now time.Time) (int64, error) {
	res := r.conn(dbc).
		Where("user_id = ? AND expires_at < ?", userID, now).
		Delete(&types.UserToken{})
	if res.Error == nil && res.RowsAffected > 0 {
		r.log.Debug("Pruned expired sessions", "user_id", userID, "count", res.RowsAffected)
	}
	return res.RowsAffected, res.Error
}
