package handlers

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/normalization"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

type fakeKernels struct {
	created  *normalization.KernelInput
	createRD *ctxutil.RequestData
	err      error
}

func (f *fakeKernels) Create(_ context.Context, rd *ctxutil.RequestData, in normalization.KernelInput) (*types.Kernel, error) {
	if !rd.Authenticated() {
		return nil, pkgerrors.ErrUnauthorized
	}
	if f.err != nil {
		return nil, f.err
	}
	f.created, f.createRD = &in, rd
	return &types.Kernel{ID: uuid.New(), Title: in.Title, AuthorID: rd.UserID}, nil
}

func (f *fakeKernels) Update(_ context.Context, rd *ctxutil.RequestData, id uuid.UUID, in normalization.KernelInput) (*types.Kernel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Kernel{ID: id, Title: in.Title, AuthorID: rd.UserID}, nil
}

func (f *fakeKernels) Delete(context.Context, *ctxutil.RequestData, uuid.UUID) error { return f.err }

func (f *fakeKernels) GetByID(_ context.Context, id uuid.UUID) (*types.Kernel, error) {
	return &types.Kernel{ID: id}, f.err
}

func (f *fakeKernels) GetOwned(_ context.Context, _ *ctxutil.RequestData, id uuid.UUID) (*types.Kernel, error) {
	return &types.Kernel{ID: id}, f.err
}

type fakeForks struct {
	parentID uuid.UUID
}

func (f *fakeForks) GetParent(context.Context, *types.Kernel) (*types.Kernel, error) { return nil, nil }
func (f *fakeForks) GetChildren(context.Context, uuid.UUID) ([]*types.Kernel, error) {
	return nil, nil
}
func (f *fakeForks) CountChildren(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (f *fakeForks) CountChildrenBatch(context.Context, []uuid.UUID) (map[uuid.UUID]int, error) {
	return nil, nil
}

func (f *fakeForks) Fork(_ context.Context, rd *ctxutil.RequestData, parentID uuid.UUID, in normalization.KernelInput) (*types.Kernel, error) {
	f.parentID = parentID
	return &types.Kernel{ID: uuid.New(), Title: in.Title, AuthorID: rd.UserID, ParentID: &parentID}, nil
}

type fakeFeed struct {
	limit  int
	detail map[uuid.UUID]*services.KernelDetail
	err    error
}

func (f *fakeFeed) BuildFeed(_ context.Context, limit int) ([]services.KernelCard, error) {
	f.limit = limit
	return []services.KernelCard{{Kernel: &types.Kernel{Title: "A"}}}, f.err
}

func (f *fakeFeed) BuildTagFeed(_ context.Context, tag string, limit int) (*services.TagPage, error) {
	if tag == "" {
		return nil, pkgerrors.NewValidation("tag", "Tag is required")
	}
	f.limit = limit
	return &services.TagPage{Tag: tag}, f.err
}

func (f *fakeFeed) BuildProfilePage(_ context.Context, username string, limit int) (*services.ProfilePage, error) {
	if username != "alice" {
		return nil, pkgerrors.ErrNotFound
	}
	f.limit = limit
	return &services.ProfilePage{Profile: &types.Profile{Username: username}}, nil
}

func (f *fakeFeed) KernelDetail(_ context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*services.KernelDetail, error) {
	d, ok := f.detail[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	out := *d
	out.IsAuthor = rd.Authenticated() && d.Kernel.AuthorID == rd.UserID
	return &out, nil
}

type fakeForms struct{}

func (fakeForms) CreateForm(context.Context, *ctxutil.RequestData) (*services.FormState, error) {
	return &services.FormState{Mode: services.FormModeCreate}, nil
}

func (fakeForms) ForkForm(_ context.Context, _ *ctxutil.RequestData, parentID uuid.UUID) (*services.FormState, error) {
	return &services.FormState{Mode: services.FormModeFork, ParentID: &parentID}, nil
}

func (fakeForms) EditForm(context.Context, *ctxutil.RequestData, uuid.UUID) (*services.FormState, error) {
	return nil, pkgerrors.ErrForbidden
}
