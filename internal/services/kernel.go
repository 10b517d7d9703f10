package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/worldkernel-backend/internal/data/repos"
	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/normalization"
	"github.com/yungbote/worldkernel-backend/internal/observability"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

// ListingConfig bounds every list query.
type ListingConfig struct {
	DefaultLimit int
	MaxLimit     int
}

func (c ListingConfig) Clamp(limit int) int {
	def, max := c.DefaultLimit, c.MaxLimit
	if def <= 0 {
		def = 20
	}
	if max <= 0 {
		max = 100
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

type KernelService interface {
	Create(ctx context.Context, rd *ctxutil.RequestData, in normalization.KernelInput) (*types.Kernel, error)
	Update(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID, in normalization.KernelInput) (*types.Kernel, error)
	Delete(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Kernel, error)
	// GetOwned loads a kernel and requires rd to be its author.
	GetOwned(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*types.Kernel, error)
}

type kernelService struct {
	tx         Transactor
	log        *logger.Logger
	kernelRepo repos.KernelRepo
	metrics    *observability.Metrics
}

func NewKernelService(
	tx Transactor,
	log *logger.Logger,
	kernelRepo repos.KernelRepo,
	metrics *observability.Metrics,
) KernelService {
	return &kernelService{
		tx:         tx,
		log:        log.With("service", "KernelService"),
		kernelRepo: kernelRepo,
		metrics:    metrics,
	}
}

func (ks *kernelService) Create(ctx context.Context, rd *ctxutil.RequestData, in normalization.KernelInput) (*types.Kernel, error) {
	if !rd.Authenticated() {
		return nil, fmt.Errorf("create kernel: %w", pkgerrors.ErrUnauthorized)
	}
	fields, err := normalization.ValidateKernelForm(in)
	if err != nil {
		return nil, err
	}

	k, err := ks.kernelRepo.Create(dbctx.Context{Ctx: ctx}, &types.Kernel{
		Title:       fields.Title,
		Description: fields.Description,
		AuthorID:    rd.UserID,
		Tags:        fields.Tags,
		License:     fields.License,
	})
	if err != nil {
		ks.log.Warn("Create kernel failed", "error", err, "author_id", rd.UserID)
		return nil, storeError("create kernel", err)
	}
	ks.metrics.ObserveKernelWrite("create")
	ks.log.Info("Kernel created", "kernel_id", k.ID, "author_id", rd.UserID)
	return k, nil
}

func (ks *kernelService) GetByID(ctx context.Context, id uuid.UUID) (*types.Kernel, error) {
	return ks.getByID(dbctx.Context{Ctx: ctx}, id)
}

func (ks *kernelService) getByID(dbc dbctx.Context, id uuid.UUID) (*types.Kernel, error) {
	k, err := ks.kernelRepo.GetByID(dbc, id)
	if err != nil {
		return nil, storeError("load kernel", err)
	}
	if k == nil {
		return nil, fmt.Errorf("kernel %s: %w", id, pkgerrors.ErrNotFound)
	}
	return k, nil
}

func (ks *kernelService) GetOwned(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*types.Kernel, error) {
	return ks.getOwned(dbctx.Context{Ctx: ctx}, rd, id)
}

func (ks *kernelService) getOwned(dbc dbctx.Context, rd *ctxutil.RequestData, id uuid.UUID) (*types.Kernel, error) {
	if !rd.Authenticated() {
		return nil, fmt.Errorf("kernel %s: %w", id, pkgerrors.ErrUnauthorized)
	}
	k, err := ks.getByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if k.AuthorID != rd.UserID {
		return nil, fmt.Errorf("kernel %s: %w", id, pkgerrors.ErrForbidden)
	}
	return k, nil
}

func (ks *kernelService) Update(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID, in normalization.KernelInput) (*types.Kernel, error) {
	var out *types.Kernel
	err := ks.tx.Transaction(ctx, func(dbc dbctx.Context) error {
		if _, err := ks.getOwned(dbc, rd, id); err != nil {
			return err
		}
		fields, err := normalization.ValidateKernelForm(in)
		if err != nil {
			return err
		}
		n, err := ks.kernelRepo.UpdateByAuthor(dbc, id, rd.UserID, fields)
		if err != nil {
			return storeError("update kernel", err)
		}
		if n == 0 {
			return fmt.Errorf("kernel %s: %w", id, pkgerrors.ErrNotFound)
		}
		out, err = ks.getByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	ks.metrics.ObserveKernelWrite("update")
	ks.log.Info("Kernel updated", "kernel_id", id, "author_id", rd.UserID)
	return out, nil
}

// Delete soft-deletes. Forks keep their parent_id and simply stop resolving it.
func (ks *kernelService) Delete(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) error {
	err := ks.tx.Transaction(ctx, func(dbc dbctx.Context) error {
		if _, err := ks.getOwned(dbc, rd, id); err != nil {
			return err
		}
		n, err := ks.kernelRepo.SoftDeleteByAuthor(dbc, id, rd.UserID)
		if err != nil {
			return storeError("delete kernel", err)
		}
		if n == 0 {
			return fmt.Errorf("kernel %s: %w", id, pkgerrors.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ks.metrics.ObserveKernelWrite("delete")
	ks.log.Info("Kernel deleted", "kernel_id", id, "author_id", rd.UserID)
	return nil
}
