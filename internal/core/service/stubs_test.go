package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	seq       int
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) conflict(u *domain.User) error {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return domain.ErrUsernameTaken
		}
		if other.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if err := r.conflict(user); err != nil {
		return nil, domain.ErrUserExists
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("u%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

// seed stores u under its own ID without hashing anything.
func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.users[u.ID] = cloneUser(u)
	return u
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := r.conflict(user); err != nil {
		return nil, err
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// ---------------------------------------------------------------------------
// In-memory milk repository (keeps insertion order)
// ---------------------------------------------------------------------------

type stubMilkRepo struct {
	records   []*domain.MilkRecord
	seq       int
	createErr error
}

func newStubMilkRepo() *stubMilkRepo {
	return &stubMilkRepo{}
}

func cloneRecord(m *domain.MilkRecord) *domain.MilkRecord {
	clone := *m
	return &clone
}

func (r *stubMilkRepo) Create(_ context.Context, m *domain.MilkRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	m.ID = fmt.Sprintf("m%d", r.seq)
	r.records = append(r.records, cloneRecord(m))
	return nil
}

func (r *stubMilkRepo) index(id string) int {
	for i, m := range r.records {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (r *stubMilkRepo) FindByID(_ context.Context, id string) (*domain.MilkRecord, error) {
	i := r.index(id)
	if i < 0 {
		return nil, domain.ErrMilkRecordNotFound
	}
	return cloneRecord(r.records[i]), nil
}

func (r *stubMilkRepo) List(_ context.Context, f ports.MilkFilter) ([]*domain.MilkRecord, error) {
	out := []*domain.MilkRecord{}
	for _, m := range r.records {
		if f.OwnerUserID != "" && m.OwnerUserID != f.OwnerUserID {
			continue
		}
		if f.MilkType != "" && m.MilkType != f.MilkType {
			continue
		}
		out = append(out, cloneRecord(m))
	}
	return out, nil
}

func (r *stubMilkRepo) Update(_ context.Context, m *domain.MilkRecord) error {
	i := r.index(m.ID)
	if i < 0 {
		return domain.ErrMilkRecordNotFound
	}
	r.records[i] = cloneRecord(m)
	return nil
}

func (r *stubMilkRepo) Delete(_ context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return domain.ErrMilkRecordNotFound
	}
	r.records = append(r.records[:i], r.records[i+1:]...)
	return nil
}

func (r *stubMilkRepo) CountByOwner(_ context.Context, owner string) (int64, error) {
	var n int64
	for _, m := range r.records {
		if m.OwnerUserID == owner {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Audit + idempotency stubs
// ---------------------------------------------------------------------------

type stubAuditRepo struct {
	entries   []*domain.AuditEntry
	insertErr error
}

func (r *stubAuditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.entries = append(r.entries, e)
	return nil
}

// stubIdempotency keeps "" for a claimed key until Remember fills it in.
type stubIdempotency struct {
	keys     map[string]string
	claimErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Claim(_ context.Context, key string) (string, bool, error) {
	if s.claimErr != nil {
		return "", false, s.claimErr
	}
	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *stubIdempotency) Remember(_ context.Context, key, id string) error {
	s.keys[key] = id
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

var errStoreDown = errors.New("store unavailable")
