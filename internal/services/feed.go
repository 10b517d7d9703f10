package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/worldkernel-backend/internal/data/repos"
	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/normalization"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

const (
	excerptLen      = 150
	visibleTagCount = 5
)

// KernelCard is one listing entry: the kernel with its author and fork count.
type KernelCard struct {
	Kernel         *types.Kernel  `json:"kernel"`
	Author         *types.Profile `json:"author"`
	ForkCount      int            `json:"fork_count"`
	Excerpt        string         `json:"excerpt"`
	LicenseLabel   string         `json:"license_label"`
	IsFork         bool           `json:"is_fork"`
	VisibleTags    types.Tags     `json:"visible_tags"`
	HiddenTagCount int            `json:"hidden_tag_count"`
}

type KernelDetail struct {
	Kernel       *types.Kernel  `json:"kernel"`
	Author       *types.Profile `json:"author"`
	Parent       *types.Kernel  `json:"parent"`
	ParentAuthor *types.Profile `json:"parent_author"`
	Children     []KernelCard   `json:"children"`
	ForkCount    int            `json:"fork_count"`
	IsAuthor     bool           `json:"is_author"`
	LicenseLabel string         `json:"license_label"`
}

type ProfilePage struct {
	Profile *types.Profile `json:"profile"`
	Kernels []KernelCard   `json:"kernels"`
}

type TagPage struct {
	Tag     string       `json:"tag"`
	Kernels []KernelCard `json:"kernels"`
}

// FeedService assembles joined read views. Any failed lookup fails the whole view.
type FeedService interface {
	BuildFeed(ctx context.Context, limit int) ([]KernelCard, error)
	BuildTagFeed(ctx context.Context, tag string, limit int) (*TagPage, error)
	BuildProfilePage(ctx context.Context, username string, limit int) (*ProfilePage, error)
	KernelDetail(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*KernelDetail, error)
}

type feedService struct {
	log        *logger.Logger
	kernelRepo repos.KernelRepo
	profiles   ProfileService
	forks      ForkService
	listing    ListingConfig
}

func NewFeedService(
	log *logger.Logger,
	kernelRepo repos.KernelRepo,
	profiles ProfileService,
	forks ForkService,
	listing ListingConfig,
) FeedService {
	return &feedService{
		log:        log.With("service", "FeedService"),
		kernelRepo: kernelRepo,
		profiles:   profiles,
		forks:      forks,
		listing:    listing,
	}
}

func (fs *feedService) BuildFeed(ctx context.Context, limit int) ([]KernelCard, error) {
	kernels, err := fs.kernelRepo.ListRecent(dbctx.Context{Ctx: ctx}, fs.listing.Clamp(limit))
	if err != nil {
		return nil, storeError("list kernels", err)
	}
	return fs.cards(ctx, kernels)
}

func (fs *feedService) BuildTagFeed(ctx context.Context, tag string, limit int) (*TagPage, error) {
	tag = normalization.ParseInputString(tag)
	if tag == "" {
		return nil, pkgerrors.NewValidation("tag", "Tag is required")
	}
	kernels, err := fs.kernelRepo.ListByTag(dbctx.Context{Ctx: ctx}, tag, fs.listing.Clamp(limit))
	if err != nil {
		return nil, storeError("list kernels by tag", err)
	}
	cards, err := fs.cards(ctx, kernels)
	if err != nil {
		return nil, err
	}
	return &TagPage{Tag: tag, Kernels: cards}, nil
}

func (fs *feedService) BuildProfilePage(ctx context.Context, username string, limit int) (*ProfilePage, error) {
	profile, err := fs.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	kernels, err := fs.kernelRepo.ListByAuthor(dbctx.Context{Ctx: ctx}, profile.ID, fs.listing.Clamp(limit))
	if err != nil {
		return nil, storeError("list kernels by author", err)
	}
	cards, err := fs.cards(ctx, kernels)
	if err != nil {
		return nil, err
	}
	return &ProfilePage{Profile: profile, Kernels: cards}, nil
}

func (fs *feedService) KernelDetail(ctx context.Context, rd *ctxutil.RequestData, id uuid.UUID) (*KernelDetail, error) {
	k, err := fs.kernelRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, storeError("load kernel", err)
	}
	if k == nil {
		return nil, fmt.Errorf("kernel %s: %w", id, pkgerrors.ErrNotFound)
	}

	var (
		parent   *types.Kernel
		children []*types.Kernel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := fs.forks.GetParent(gctx, k)
		parent = p
		return err
	})
	g.Go(func() error {
		c, err := fs.forks.GetChildren(gctx, k.ID)
		children = c
		return err
	})
	if err := g.Wait(); err != nil {
		fs.log.Warn("Kernel detail lookup failed", "error", err, "kernel_id", id)
		return nil, err
	}

	authorIDs := []uuid.UUID{k.AuthorID}
	if parent != nil {
		authorIDs = append(authorIDs, parent.AuthorID)
	}
	childCards, authors, err := fs.cardsWithAuthors(ctx, children, authorIDs)
	if err != nil {
		return nil, err
	}

	detail := &KernelDetail{
		Kernel:       k,
		Author:       authors[k.AuthorID],
		Parent:       parent,
		Children:     childCards,
		ForkCount:    len(children),
		IsAuthor:     rd.Authenticated() && rd.UserID == k.AuthorID,
		LicenseLabel: k.License.Label(),
	}
	if parent != nil {
		detail.ParentAuthor = authors[parent.AuthorID]
	}
	return detail, nil
}

func (fs *feedService) cards(ctx context.Context, kernels []*types.Kernel) ([]KernelCard, error) {
	cards, _, err := fs.cardsWithAuthors(ctx, kernels, nil)
	return cards, err
}

// cardsWithAuthors loads authors (for kernels plus extraAuthors) and fork counts
// concurrently, one batched query each.
func (fs *feedService) cardsWithAuthors(ctx context.Context, kernels []*types.Kernel, extraAuthors []uuid.UUID) ([]KernelCard, map[uuid.UUID]*types.Profile, error) {
	ids := make([]uuid.UUID, 0, len(kernels))
	authorIDs := append([]uuid.UUID{}, extraAuthors...)
	for _, k := range kernels {
		ids = append(ids, k.ID)
		authorIDs = append(authorIDs, k.AuthorID)
	}

	var (
		authors map[uuid.UUID]*types.Profile
		counts  map[uuid.UUID]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := fs.profiles.GetByIDs(gctx, authorIDs)
		authors = a
		return err
	})
	g.Go(func() error {
		if len(ids) == 0 {
			counts = map[uuid.UUID]int{}
			return nil
		}
		c, err := fs.forks.CountChildrenBatch(gctx, ids)
		counts = c
		return err
	})
	if err := g.Wait(); err != nil {
		fs.log.Warn("Listing assembly failed", "error", err, "kernels", len(kernels))
		return nil, nil, err
	}

	out := make([]KernelCard, 0, len(kernels))
	for _, k := range kernels {
		out = append(out, newKernelCard(k, authors[k.AuthorID], counts[k.ID]))
	}
	return out, authors, nil
}

func newKernelCard(k *types.Kernel, author *types.Profile, forkCount int) KernelCard {
	visible, hidden := k.Tags.Visible(visibleTagCount)
	return KernelCard{
		Kernel:         k,
		Author:         author,
		ForkCount:      forkCount,
		Excerpt:        normalization.Excerpt(k.Description, excerptLen),
		LicenseLabel:   k.License.Label(),
		IsFork:         k.IsFork(),
		VisibleTags:    visible,
		HiddenTagCount: hidden,
	}
}
