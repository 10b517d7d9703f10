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

// ForkService resolves the parent/child relation between kernels.
type ForkService interface {
	// GetParent returns nil when k is not a fork or its parent no longer exists.
	GetParent(ctx context.Context, k *types.Kernel) (*types.Kernel, error)
	GetChildren(ctx context.Context, kernelID uuid.UUID) ([]*types.Kernel, error)
	CountChildren(ctx context.Context, kernelID uuid.UUID) (int, error)
	CountChildrenBatch(ctx context.Context, kernelIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Fork(ctx context.Context, rd *ctxutil.RequestData, parentID uuid.UUID, in normalization.KernelInput) (*types.Kernel, error)
}

type forkService struct {
	tx         Transactor
	log        *logger.Logger
	kernelRepo repos.KernelRepo
	metrics    *observability.Metrics
}

func NewForkService(tx Transactor, log *logger.Logger, kernelRepo repos.KernelRepo, metrics *observability.Metrics) ForkService {
	return &forkService{
		tx:         tx,
		log:        log.With("service", "ForkService"),
		kernelRepo: kernelRepo,
		metrics:    metrics,
	}
}

func (fs *forkService) GetParent(ctx context.Context, k *types.Kernel) (*types.Kernel, error) {
	if !k.IsFork() {
		return nil, nil
	}
	parent, err := fs.kernelRepo.GetByID(dbctx.Context{Ctx: ctx}, *k.ParentID)
	if err != nil {
		return nil, storeError("load parent", err)
	}
	return parent, nil
}

func (fs *forkService) GetChildren(ctx context.Context, kernelID uuid.UUID) ([]*types.Kernel, error) {
	rows, err := fs.kernelRepo.ListChildren(dbctx.Context{Ctx: ctx}, kernelID)
	if err != nil {
		return nil, storeError("list children", err)
	}
	return rows, nil
}

func (fs *forkService) CountChildren(ctx context.Context, kernelID uuid.UUID) (int, error) {
	counts, err := fs.CountChildrenBatch(ctx, []uuid.UUID{kernelID})
	if err != nil {
		return 0, err
	}
	return counts[kernelID], nil
}

func (fs *forkService) CountChildrenBatch(ctx context.Context, kernelIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts, err := fs.kernelRepo.CountChildren(dbctx.Context{Ctx: ctx}, uniqueIDs(kernelIDs))
	if err != nil {
		return nil, storeError("count children", err)
	}
	return counts, nil
}

func (fs *forkService) Fork(ctx context.Context, rd *ctxutil.RequestData, parentID uuid.UUID, in normalization.KernelInput) (*types.Kernel, error) {
	if !rd.Authenticated() {
		return nil, fmt.Errorf("fork kernel: %w", pkgerrors.ErrUnauthorized)
	}

	var child *types.Kernel
	err := fs.tx.Transaction(ctx, func(dbc dbctx.Context) error {
		// The share lock keeps the parent live until the child row commits.
		parent, err := fs.kernelRepo.GetForShare(dbc, parentID)
		if err != nil {
			return storeError("load parent", err)
		}
		if parent == nil {
			return fmt.Errorf("parent kernel %s: %w", parentID, pkgerrors.ErrNotFound)
		}

		fields, err := normalization.ValidateKernelForm(in)
		if err != nil {
			return err
		}

		// parent_id is only ever set here, to a row that already exists, so no cycle can form.
		child, err = fs.kernelRepo.Create(dbc, &types.Kernel{
			Title:       fields.Title,
			Description: fields.Description,
			AuthorID:    rd.UserID,
			ParentID:    &parent.ID,
			Tags:        fields.Tags,
			License:     fields.License,
		})
		if err != nil {
			fs.log.Warn("Fork failed", "error", err, "parent_id", parentID)
			return storeError("create fork", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fs.metrics.ObserveKernelWrite("fork")
	fs.log.Info("Kernel forked", "kernel_id", child.ID, "parent_id", parentID, "author_id", rd.UserID)
	return child, nil
}
