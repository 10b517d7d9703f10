package services

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	"github.com/yungbote/worldkernel-backend/internal/pkg/dbctx"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

// memStore backs the fake repos. Each fake reads and writes through it so the fake
// Transactor can snapshot and restore it around a failing callback.
type memStore struct {
	mu          sync.Mutex
	clock       time.Time
	profiles    map[uuid.UUID]types.Profile
	credentials map[uuid.UUID]types.UserCredential
	tokens      map[uuid.UUID]types.UserToken
	kernels     map[uuid.UUID]types.Kernel
	deleted     map[uuid.UUID]bool

	// fail makes the named repo method return the error.
	fail  map[string]error
	calls map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		profiles:    map[uuid.UUID]types.Profile{},
		credentials: map[uuid.UUID]types.UserCredential{},
		tokens:      map[uuid.UUID]types.UserToken{},
		kernels:     map[uuid.UUID]types.Kernel{},
		deleted:     map[uuid.UUID]bool{},
		fail:        map[string]error{},
		calls:       map[string]int{},
	}
}

func (s *memStore) enter(op string) error {
	s.calls[op]++
	return s.fail[op]
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memSnapshot struct {
	profiles    map[uuid.UUID]types.Profile
	credentials map[uuid.UUID]types.UserCredential
	tokens      map[uuid.UUID]types.UserToken
	kernels     map[uuid.UUID]types.Kernel
	deleted     map[uuid.UUID]bool
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		profiles:    copyMap(s.profiles),
		credentials: copyMap(s.credentials),
		tokens:      copyMap(s.tokens),
		kernels:     copyMap(s.kernels),
		deleted:     copyMap(s.deleted),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = snap.profiles
	s.credentials = snap.credentials
	s.tokens = snap.tokens
	s.kernels = snap.kernels
	s.deleted = snap.deleted
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint, Message: "duplicate key value"}
}

type fakeTx struct {
	store *memStore
	count int
}

func (f *fakeTx) Transaction(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	f.count++
	snap := f.store.snapshot()
	if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// profiles

type fakeProfileRepo struct{ s *memStore }

func (r *fakeProfileRepo) Create(_ dbctx.Context, p *types.Profile) (*types.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("profile.Create"); err != nil {
		return nil, err
	}
	for _, existing := range r.s.profiles {
		if existing.Username == strings.ToLower(p.Username) {
			return nil, uniqueViolation("idx_profile_username")
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Username = strings.ToLower(p.Username)
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.profiles[p.ID] = *p
	return p, nil
}

func (r *fakeProfileRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("profile.GetByIDs"); err != nil {
		return nil, err
	}
	out := []*types.Profile{}
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("profile.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProfileRepo) GetByUsername(_ dbctx.Context, username string) (*types.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("profile.GetByUsername"); err != nil {
		return nil, err
	}
	for _, p := range r.s.profiles {
		if p.Username == strings.ToLower(username) {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// credentials

type fakeCredentialRepo struct{ s *memStore }

func (r *fakeCredentialRepo) Create(_ dbctx.Context, c *types.UserCredential) (*types.UserCredential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("credential.Create"); err != nil {
		return nil, err
	}
	c.Email = strings.ToLower(c.Email)
	for _, existing := range r.s.credentials {
		if existing.Email == c.Email {
			return nil, uniqueViolation("idx_user_credential_email")
		}
	}
	r.s.credentials[c.ProfileID] = *c
	return c, nil
}

func (r *fakeCredentialRepo) GetByEmail(_ dbctx.Context, email string) (*types.UserCredential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("credential.GetByEmail"); err != nil {
		return nil, err
	}
	for _, c := range r.s.credentials {
		if c.Email == strings.ToLower(email) {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCredentialRepo) GetByProfileID(_ dbctx.Context, id uuid.UUID) (*types.UserCredential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.credentials[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// tokens

type fakeTokenRepo struct{ s *memStore }

func (r *fakeTokenRepo) Create(_ dbctx.Context, t *types.UserToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("token.Create"); err != nil {
		return err
	}
	r.s.tokens[t.ID] = *t
	return nil
}

func (r *fakeTokenRepo) GetByAccessToken(_ dbctx.Context, accessToken string) (*types.UserToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("token.GetByAccessToken"); err != nil {
		return nil, err
	}
	for _, t := range r.s.tokens {
		if t.AccessToken == accessToken {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTokenRepo) TakeRefreshToken(_ dbctx.Context, refreshToken string) (*types.UserToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("token.TakeRefreshToken"); err != nil {
		return nil, err
	}
	for id, t := range r.s.tokens {
		if t.RefreshToken == refreshToken {
			delete(r.s.tokens, id)
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTokenRepo) remove(match func(types.UserToken) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.tokens {
		if match(t) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n
}

func (r *fakeTokenRepo) DeleteByAccessToken(_ dbctx.Context, accessToken string) (int64, error) {
	return r.remove(func(t types.UserToken) bool { return t.AccessToken == accessToken }), nil
}

func (r *fakeTokenRepo) DeleteExpired(_ dbctx.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return r.remove(func(t types.UserToken) bool { return t.UserID == userID && t.ExpiresAt.Before(now) }), nil
}

// kernels

type fakeKernelRepo struct{ s *memStore }

func (r *fakeKernelRepo) Create(_ dbctx.Context, k *types.Kernel) (*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.Create"); err != nil {
		return nil, err
	}
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = r.s.tick()
	}
	k.UpdatedAt = k.CreatedAt
	if k.Tags == nil {
		k.Tags = types.Tags{}
	}
	r.s.kernels[k.ID] = cloneKernel(*k)
	out := cloneKernel(*k)
	return &out, nil
}

func cloneKernel(k types.Kernel) types.Kernel {
	k.Tags = append(types.Tags{}, k.Tags...)
	if k.ParentID != nil {
		pid := *k.ParentID
		k.ParentID = &pid
	}
	return k
}

func (r *fakeKernelRepo) live(match func(types.Kernel) bool) []*types.Kernel {
	out := []*types.Kernel{}
	for id, k := range r.s.kernels {
		if r.s.deleted[id] || !match(k) {
			continue
		}
		cp := cloneKernel(k)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

func limitKernels(in []*types.Kernel, limit int) []*types.Kernel {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

func (r *fakeKernelRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.GetByID"); err != nil {
		return nil, err
	}
	rows := r.live(func(k types.Kernel) bool { return k.ID == id })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fakeKernelRepo) GetForShare(_ dbctx.Context, id uuid.UUID) (*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.GetForShare"); err != nil {
		return nil, err
	}
	rows := r.live(func(k types.Kernel) bool { return k.ID == id })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fakeKernelRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.live(func(k types.Kernel) bool { return containsID(ids, k.ID) }), nil
}

func (r *fakeKernelRepo) ListRecent(_ dbctx.Context, limit int) ([]*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.ListRecent"); err != nil {
		return nil, err
	}
	r.s.calls["kernel.ListRecent.limit"] = limit
	return limitKernels(r.live(func(types.Kernel) bool { return true }), limit), nil
}

func (r *fakeKernelRepo) ListByTag(_ dbctx.Context, tag string, limit int) ([]*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return limitKernels(r.live(func(k types.Kernel) bool { return containsString(k.Tags, tag) }), limit), nil
}

func (r *fakeKernelRepo) ListByAuthor(_ dbctx.Context, authorID uuid.UUID, limit int) ([]*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return limitKernels(r.live(func(k types.Kernel) bool { return k.AuthorID == authorID }), limit), nil
}

func (r *fakeKernelRepo) ListChildren(_ dbctx.Context, parentID uuid.UUID) ([]*types.Kernel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.ListChildren"); err != nil {
		return nil, err
	}
	return r.live(func(k types.Kernel) bool { return k.ParentID != nil && *k.ParentID == parentID }), nil
}

func (r *fakeKernelRepo) CountChildren(_ dbctx.Context, parentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.CountChildren"); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(parentIDs))
	for _, id := range parentIDs {
		out[id] = 0
	}
	for _, k := range r.live(func(k types.Kernel) bool { return k.ParentID != nil }) {
		if _, ok := out[*k.ParentID]; ok {
			out[*k.ParentID]++
		}
	}
	return out, nil
}

func (r *fakeKernelRepo) UpdateByAuthor(_ dbctx.Context, id, authorID uuid.UUID, f types.KernelFields) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.UpdateByAuthor"); err != nil {
		return 0, err
	}
	k, ok := r.s.kernels[id]
	if !ok || r.s.deleted[id] || k.AuthorID != authorID {
		return 0, nil
	}
	k.Title, k.Description, k.Tags, k.License = f.Title, f.Description, f.Tags, f.License
	k.UpdatedAt = r.s.tick()
	r.s.kernels[id] = cloneKernel(k)
	return 1, nil
}

func (r *fakeKernelRepo) SoftDeleteByAuthor(_ dbctx.Context, id, authorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("kernel.SoftDeleteByAuthor"); err != nil {
		return 0, err
	}
	k, ok := r.s.kernels[id]
	if !ok || r.s.deleted[id] || k.AuthorID != authorID {
		return 0, nil
	}
	r.s.deleted[id] = true
	return 1, nil
}

func containsString[S ~[]string](in S, v string) bool {
	for _, s := range in {
		if s == v {
			return true
		}
	}
	return false
}

func containsID(in []uuid.UUID, v uuid.UUID) bool {
	for _, id := range in {
		if id == v {
			return true
		}
	}
	return false
}

// env wires every service over one memStore.
type env struct {
	store    *memStore
	tx       *fakeTx
	auth     AuthService
	profiles ProfileService
	kernels  KernelService
	forks    ForkService
	feed     FeedService
	forms    KernelFormService
	nav      NavigationService
}

func newEnv() *env {
	store := newMemStore()
	tx := &fakeTx{store: store}
	log := logger.Nop()
	listing := ListingConfig{DefaultLimit: 20, MaxLimit: 100}

	profileRepo := &fakeProfileRepo{s: store}
	kernelRepo := &fakeKernelRepo{s: store}

	profiles := NewProfileService(log, profileRepo)
	kernels := NewKernelService(tx, log, kernelRepo, nil)
	forks := NewForkService(tx, log, kernelRepo, nil)
	return &env{
		store:    store,
		tx:       tx,
		auth:     NewAuthService(tx, log, profileRepo, &fakeCredentialRepo{s: store}, &fakeTokenRepo{s: store}, AuthConfig{JWTSecretKey: "test-secret", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour, BcryptCost: 4}),
		profiles: profiles,
		kernels:  kernels,
		forks:    forks,
		feed:     NewFeedService(log, kernelRepo, profiles, forks, listing),
		forms:    NewKernelFormService(log, kernels),
		nav:      NewNavigationService(log, profiles, PathLogin),
	}
}

// seedProfile inserts a profile directly and returns an authenticated identity for it.
func (e *env) seedProfile(username string) (*types.Profile, *ctxutil.RequestData) {
	p := &types.Profile{ID: uuid.New(), Username: username}
	if _, err := (&fakeProfileRepo{s: e.store}).Create(dbctx.Context{}, p); err != nil {
		panic(err)
	}
	return p, &ctxutil.RequestData{UserID: p.ID}
}
