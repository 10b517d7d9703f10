package kernel

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

const feedOrder = "created_at DESC, id ASC"

type KernelRepo interface {
	Create(dbc dbctx.Context, k *types.Kernel) (*types.Kernel, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Kernel, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Kernel, error)
	GetForShare(dbc dbctx.Context, id uuid.UUID) (*types.Kernel, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Kernel, error)
	ListByTag(dbc dbctx.Context, tag string, limit int) ([]*types.Kernel, error)
	ListByAuthor(dbc dbctx.Context, authorID uuid.UUID, limit int) ([]*types.Kernel, error)
	ListChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Kernel, error)
	CountChildren(dbc dbctx.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error)
	UpdateByAuthor(dbc dbctx.Context, id, authorID uuid.UUID, fields types.KernelFields) (int64, error)
	SoftDeleteByAuthor(dbc dbctx.Context, id, authorID uuid.UUID) (int64, error)
}

type kernelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKernelRepo(db *gorm.DB, baseLog *logger.Logger) KernelRepo {
	repoLog := baseLog.With("repo", "KernelRepo")
	return &kernelRepo{db: db, log: repoLog}
}

func (kr *kernelRepo) Create(dbc dbctx.Context, k *types.Kernel) (*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.Tags == nil {
		k.Tags = types.Tags{}
	}
	now := time.Now().UTC()
	k.CreatedAt = now
	k.UpdatedAt = now

	if err := transaction.WithContext(dbc.Ctx).Omit("Author", "Parent").Create(k).Error; err != nil {
		return nil, err
	}
	return k, nil
}

// GetByID returns nil, nil when the kernel does not exist or was deleted.
func (kr *kernelRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Kernel, error) {
	rows, err := kr.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetForShare reads a live kernel under FOR SHARE. Inside dbc.Tx a concurrent soft delete
// waits for the commit. Returns nil, nil when the kernel does not exist or was deleted.
func (kr *kernelRepo) GetForShare(dbc dbctx.Context, id uuid.UUID) (*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	var rows []*types.Kernel
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (kr *kernelRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	results := []*types.Kernel{}
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order(feedOrder).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (kr *kernelRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	results := []*types.Kernel{}
	if err := transaction.WithContext(dbc.Ctx).
		Order(feedOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (kr *kernelRepo) ListByTag(dbc dbctx.Context, tag string, limit int) ([]*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	results := []*types.Kernel{}
	if tag == "" {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("? = ANY(tags)", tag).
		Order(feedOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (kr *kernelRepo) ListByAuthor(dbc dbctx.Context, authorID uuid.UUID, limit int) ([]*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	results := []*types.Kernel{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("author_id = ?", authorID).
		Order(feedOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListChildren returns direct forks only, newest first.
func (kr *kernelRepo) ListChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Kernel, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	results := []*types.Kernel{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("parent_id = ?", parentID).
		Order(feedOrder).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountChildren counts live direct forks for every id in one grouped query.
// Ids without forks are present with a zero count.
func (kr *kernelRepo) CountChildren(dbc dbctx.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	out := make(map[uuid.UUID]int, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	for _, id := range parentIDs {
		out[id] = 0
	}

	type row struct {
		ParentID uuid.UUID
		N        int64
	}
	var rows []row
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Kernel{}).
		Select("parent_id, COUNT(*) AS n").
		Where("parent_id IN ?", parentIDs).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ParentID] = int(r.N)
	}
	return out, nil
}

// UpdateByAuthor writes fields only when authorID owns the row. Zero rows means
// the kernel is missing or owned by someone else.
func (kr *kernelRepo) UpdateByAuthor(dbc dbctx.Context, id, authorID uuid.UUID, fields types.KernelFields) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	tags := fields.Tags
	if tags == nil {
		tags = types.Tags{}
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Kernel{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]interface{}{
			"title":       fields.Title,
			"description": fields.Description,
			"tags":        tags,
			"license":     fields.License,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (kr *kernelRepo) SoftDeleteByAuthor(dbc dbctx.Context, id, authorID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = kr.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&types.Kernel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
