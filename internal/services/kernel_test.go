package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/normalization"
	"github.com/yungbote/worldkernel-backend/internal/observability"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

func validInput(title string) normalization.KernelInput {
	return normalization.KernelInput{
		Title:       title,
		Description: "A world seed about " + title,
		TagsInput:   "Ocean, ruins",
		License:     "attribution",
	}
}

func TestKernelCreate(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	author, rd := e.seedProfile("alice")

	k, err := e.kernels.Create(ctx, rd, validInput("Drowned Spires"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if k.AuthorID != author.ID || k.ParentID != nil {
		t.Fatalf("kernel: author=%s parent=%v", k.AuthorID, k.ParentID)
	}
	if strings.Join(k.Tags, ",") != "ocean,ruins" || k.License != types.LicenseAttribution {
		t.Fatalf("fields: tags=%v license=%s", k.Tags, k.License)
	}
	got, err := e.kernels.GetByID(ctx, k.ID)
	if err != nil || got.Title != "Drowned Spires" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
}

func TestKernelCreateRejects(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, rd := e.seedProfile("alice")

	if _, err := e.kernels.Create(ctx, nil, validInput("x")); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("anonymous: want=ErrUnauthorized got=%v", err)
	}
	in := validInput(strings.Repeat("a", 201))
	_, err := e.kernels.Create(ctx, rd, in)
	ve, ok := pkgerrors.AsValidation(err)
	if !ok || ve.Message != "Title must be 200 characters or less" {
		t.Fatalf("long title: got=%v", err)
	}
	if e.store.calls["kernel.Create"] != 0 {
		t.Fatalf("repo called on invalid input")
	}
}

func TestKernelCreateStoreFailure(t *testing.T) {
	t.Parallel()
	e := newEnv()
	_, rd := e.seedProfile("alice")
	e.store.fail["kernel.Create"] = fmt.Errorf("dial: %w", context.DeadlineExceeded)

	if _, err := e.kernels.Create(context.Background(), rd, validInput("x")); !errors.Is(err, pkgerrors.ErrUnavailable) {
		t.Fatalf("want=ErrUnavailable got=%v", err)
	}
}

func TestKernelUpdateOwnership(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	_, bob := e.seedProfile("bob")

	k, err := e.kernels.Create(ctx, alice, validInput("Original"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := e.kernels.Update(ctx, bob, k.ID, validInput("Hijacked")); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("non-author update: want=ErrForbidden got=%v", err)
	}
	if _, err := e.kernels.Update(ctx, nil, k.ID, validInput("Anon")); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("anonymous update: want=ErrUnauthorized got=%v", err)
	}
	if _, err := e.kernels.Update(ctx, alice, uuid.New(), validInput("Missing")); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing update: want=ErrNotFound got=%v", err)
	}

	in := validInput("Renamed")
	in.TagsInput = ""
	in.License = ""
	updated, err := e.kernels.Update(ctx, alice, k.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Renamed" || len(updated.Tags) != 0 || updated.License != types.LicenseOpen {
		t.Fatalf("updated: got=%+v", updated)
	}
	if updated.AuthorID != k.AuthorID || !updated.CreatedAt.Equal(k.CreatedAt) {
		t.Fatalf("immutable fields changed")
	}
	if !updated.UpdatedAt.After(k.UpdatedAt) {
		t.Fatalf("updated_at not advanced")
	}
}

func TestKernelUpdateValidationDoesNotWrite(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	k, _ := e.kernels.Create(ctx, alice, validInput("Original"))

	in := validInput("still fine")
	in.License = "proprietary"
	if _, err := e.kernels.Update(ctx, alice, k.ID, in); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("bad license: want=ErrInvalidArgument got=%v", err)
	}
	if e.store.calls["kernel.UpdateByAuthor"] != 0 {
		t.Fatalf("update issued for invalid input")
	}
	got, _ := e.kernels.GetByID(ctx, k.ID)
	if got.Title != "Original" {
		t.Fatalf("title changed: %q", got.Title)
	}
}

func TestKernelDelete(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	_, bob := e.seedProfile("bob")
	k, _ := e.kernels.Create(ctx, alice, validInput("Doomed"))

	if err := e.kernels.Delete(ctx, bob, k.ID); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Fatalf("non-author delete: want=ErrForbidden got=%v", err)
	}
	if err := e.kernels.Delete(ctx, alice, k.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := e.kernels.GetByID(ctx, k.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("after delete: want=ErrNotFound got=%v", err)
	}
	if err := e.kernels.Delete(ctx, alice, k.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("second delete: want=ErrNotFound got=%v", err)
	}
}

func TestKernelWritesAreCounted(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	m := observability.NewMetrics(true)
	repo := &fakeKernelRepo{s: store}
	tx := &fakeTx{store: store}
	ks := NewKernelService(tx, logger.Nop(), repo, m)
	fs := NewForkService(tx, logger.Nop(), repo, m)
	rd := &ctxutil.RequestData{UserID: uuid.New()}
	ctx := context.Background()

	k, err := ks.Create(ctx, rd, validInput("Counted"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fs.Fork(ctx, rd, k.ID, validInput("Child")); err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if _, err := ks.Update(ctx, rd, k.ID, validInput("Renamed")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := ks.Delete(ctx, rd, k.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, op := range []string{"create", "fork", "update", "delete"} {
		if got := m.KernelWrites(op); got != 1 {
			t.Fatalf("%s writes: want=1 got=%v", op, got)
		}
	}
}

func TestListingClamp(t *testing.T) {
	t.Parallel()
	c := ListingConfig{DefaultLimit: 20, MaxLimit: 100}
	for in, want := range map[int]int{-1: 20, 0: 20, 5: 5, 100: 100, 1000: 100} {
		if got := c.Clamp(in); got != want {
			t.Fatalf("Clamp(%d): want=%d got=%d", in, want, got)
		}
	}
	if got := (ListingConfig{}).Clamp(0); got != 20 {
		t.Fatalf("zero config default: want=20 got=%d", got)
	}
}

func TestForkLineage(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	_, bob := e.seedProfile("bob")

	root, _ := e.kernels.Create(ctx, alice, validInput("Root"))
	child, err := e.forks.Fork(ctx, bob, root.ID, validInput("Child"))
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != root.ID || child.AuthorID != bob.UserID {
		t.Fatalf("child: parent=%v author=%s", child.ParentID, child.AuthorID)
	}
	if _, err := e.forks.Fork(ctx, alice, child.ID, validInput("Grandchild")); err != nil {
		t.Fatalf("Fork grandchild: %v", err)
	}

	parent, err := e.forks.GetParent(ctx, child)
	if err != nil || parent == nil || parent.ID != root.ID {
		t.Fatalf("GetParent: got=%v err=%v", parent, err)
	}
	if p, err := e.forks.GetParent(ctx, root); err != nil || p != nil {
		t.Fatalf("GetParent(root): want=nil got=%v err=%v", p, err)
	}

	if n, _ := e.forks.CountChildren(ctx, root.ID); n != 1 {
		t.Fatalf("root children: want=1 got=%d", n)
	}
	counts, err := e.forks.CountChildrenBatch(ctx, []uuid.UUID{root.ID, child.ID, root.ID, uuid.New()})
	if err != nil {
		t.Fatalf("CountChildrenBatch: %v", err)
	}
	if counts[root.ID] != 1 || counts[child.ID] != 1 || len(counts) != 3 {
		t.Fatalf("counts: got=%v", counts)
	}
	if e.store.calls["kernel.CountChildren"] != 2 {
		t.Fatalf("count queries: want=2 got=%d", e.store.calls["kernel.CountChildren"])
	}
}

func TestForkRejects(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	root, _ := e.kernels.Create(ctx, alice, validInput("Root"))

	if _, err := e.forks.Fork(ctx, nil, root.ID, validInput("x")); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("anonymous: want=ErrUnauthorized got=%v", err)
	}
	if _, err := e.forks.Fork(ctx, alice, uuid.New(), validInput("x")); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing parent: want=ErrNotFound got=%v", err)
	}
	bad := validInput("x")
	bad.TagsInput = strings.Repeat("t", 31)
	if _, err := e.forks.Fork(ctx, alice, root.ID, bad); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("long tag: want=ErrInvalidArgument got=%v", err)
	}
	if e.store.calls["kernel.Create"] != 1 {
		t.Fatalf("creates: want=1 got=%d", e.store.calls["kernel.Create"])
	}
}

func TestForkLocksParentInsideTransaction(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	root, _ := e.kernels.Create(ctx, alice, validInput("Root"))

	before := e.tx.count
	if _, err := e.forks.Fork(ctx, alice, root.ID, validInput("Child")); err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if e.tx.count != before+1 {
		t.Fatalf("transactions: want=%d got=%d", before+1, e.tx.count)
	}
	if e.store.calls["kernel.GetForShare"] != 1 {
		t.Fatalf("parent lock reads: want=1 got=%d", e.store.calls["kernel.GetForShare"])
	}

	e.store.fail["kernel.GetForShare"] = fmt.Errorf("lock: %w", context.DeadlineExceeded)
	if _, err := e.forks.Fork(ctx, alice, root.ID, validInput("Blocked")); !errors.Is(err, pkgerrors.ErrUnavailable) {
		t.Fatalf("lock failure: want=ErrUnavailable got=%v", err)
	}
	if e.store.calls["kernel.Create"] != 2 {
		t.Fatalf("creates after lock failure: want=2 got=%d", e.store.calls["kernel.Create"])
	}
	if n, _ := e.forks.CountChildren(ctx, root.ID); n != 1 {
		t.Fatalf("children: want=1 got=%d", n)
	}
}

func TestForkOfDeletedParentDegrades(t *testing.T) {
	t.Parallel()
	e := newEnv()
	ctx := context.Background()
	_, alice := e.seedProfile("alice")
	root, _ := e.kernels.Create(ctx, alice, validInput("Root"))
	child, _ := e.forks.Fork(ctx, alice, root.ID, validInput("Child"))

	if err := e.kernels.Delete(ctx, alice, root.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := e.kernels.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("child lookup: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != root.ID {
		t.Fatalf("parent_id rewritten: %v", got.ParentID)
	}
	if p, err := e.forks.GetParent(ctx, got); err != nil || p != nil {
		t.Fatalf("GetParent after delete: want=nil got=%v err=%v", p, err)
	}
	if _, err := e.forks.Fork(ctx, alice, root.ID, validInput("Late")); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("fork of deleted: want=ErrNotFound got=%v", err)
	}
}
