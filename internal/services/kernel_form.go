package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/domain/kernel"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeFork   FormMode = "fork"
	FormModeEdit   FormMode = "edit"
)

type LicenseOption struct {
	Value types.License `json:"value"`
	Label string        `json:"label"`
}

type FormLimits struct {
	MaxTitleLen       int `json:"max_title_len"`
	MaxDescriptionLen int `json:"max_description_len"`
	MaxTags           int `json:"max_tags"`
	MaxTagLen         int `json:"max_tag_len"`
}

type FormValues struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	TagsInput   string        `json:"tags_input"`
	License     types.License `json:"license"`
}

// FormState is everything a client needs to render the kernel form in one mode.
type FormState struct {
	Mode           FormMode        `json:"mode"`
	Heading        string          `json:"heading"`
	Subheading     string          `json:"subheading"`
	SubmitLabel    string          `json:"submit_label"`
	SubmitMethod   string          `json:"submit_method"`
	SubmitPath     string          `json:"submit_path"`
	CancelPath     string          `json:"cancel_path"`
	ParentID       *uuid.UUID      `json:"parent_id,omitempty"`
	Values         FormValues      `json:"values"`
	LicenseOptions []LicenseOption `json:"license_options"`
	Limits         FormLimits      `json:"limits"`
}

type KernelFormService interface {
	CreateForm(ctx context.Context, rd *ctxutil.RequestData) (*FormState, error)
	ForkForm(ctx context.Context, rd *ctxutil.RequestData, parentID uuid.UUID) (*FormState, error)
	EditForm(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*FormState, error)
}

type kernelFormService struct {
	log     *logger.Logger
	kernels KernelService
}

func NewKernelFormService(log *logger.Logger, kernels KernelService) KernelFormService {
	return &kernelFormService{log: log.With("service", "KernelFormService"), kernels: kernels}
}

func (s *kernelFormService) CreateForm(ctx context.Context, rd *ctxutil.RequestData) (*FormState, error) {
	if !rd.Authenticated() {
		return nil, fmt.Errorf("create form: %w", pkgerrors.ErrUnauthorized)
	}
	st := baseForm(FormModeCreate)
	st.Heading = "Create New Kernel"
	st.Subheading = "Share your world-building idea with the community"
	st.SubmitLabel = "Create Kernel"
	st.SubmitMethod = "POST"
	st.SubmitPath = "/api/kernels"
	st.CancelPath = "/"
	st.Values = FormValues{License: types.LicenseOpen}
	return st, nil
}

func (s *kernelFormService) ForkForm(ctx context.Context, rd *ctxutil.RequestData, parentID uuid.UUID) (*FormState, error) {
	if !rd.Authenticated() {
		return nil, fmt.Errorf("fork form: %w", pkgerrors.ErrUnauthorized)
	}
	parent, err := s.kernels.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	st := baseForm(FormModeFork)
	st.Heading = "Fork: " + parent.Title
	st.Subheading = `Create a derivative work based on "` + parent.Title + `"`
	st.SubmitLabel = "Fork Kernel"
	st.SubmitMethod = "POST"
	st.SubmitPath = fmt.Sprintf("/api/kernels/%s/fork", parent.ID)
	st.CancelPath = fmt.Sprintf("/kernel/%s", parent.ID)
	st.ParentID = &parent.ID
	st.Values = valuesFrom(parent)
	return st, nil
}

func (s *kernelFormService) EditForm(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*FormState, error) {
	k, err := s.kernels.GetOwned(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	st := baseForm(FormModeEdit)
	st.Heading = "Edit Kernel"
	st.Subheading = "Update your kernel"
	st.SubmitLabel = "Save Changes"
	st.SubmitMethod = "PUT"
	st.SubmitPath = fmt.Sprintf("/api/kernels/%s", k.ID)
	st.CancelPath = fmt.Sprintf("/kernel/%s", k.ID)
	st.Values = valuesFrom(k)
	return st, nil
}

func baseForm(mode FormMode) *FormState {
	opts := make([]LicenseOption, 0, 3)
	for _, l := range kernel.Licenses() {
		opts = append(opts, LicenseOption{Value: l, Label: l.Label()})
	}
	return &FormState{
		Mode:           mode,
		LicenseOptions: opts,
		Limits: FormLimits{
			MaxTitleLen:       kernel.MaxTitleLen,
			MaxDescriptionLen: kernel.MaxDescriptionLen,
			MaxTags:           kernel.MaxTags,
			MaxTagLen:         kernel.MaxTagLen,
		},
	}
}

func valuesFrom(k *types.Kernel) FormValues {
	license := k.License
	if !license.Valid() {
		license = types.LicenseOpen
	}
	return FormValues{
		Title:       k.Title,
		Description: k.Description,
		TagsInput:   k.Tags.Join(),
		License:     license,
	}
}
