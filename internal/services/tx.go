package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
)

// Transactor runs fn inside one database transaction. A non-nil return rolls back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewGormTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
