package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store used for demos/tests.
type Repository struct {
	mu      sync.RWMutex
	users   map[string]*storedUser
	byEmail map[string]string
	now     func() time.Time
}

type storedUser struct {
	user     *domain.User
	metadata projection.Metadata
}

func NewRepository() *Repository {
	return &Repository{
		users:   map[string]*storedUser{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if user == nil {
		return nil, errors.New("cannot save nil user")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, ports.ErrEmailTaken
	}
	if _, ok := r.users[user.ID]; ok {
		return nil, errors.New("user id already exists")
	}
	timestamp := r.now()
	stored := &storedUser{user: user.Clone(), metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp}}
	r.users[user.ID] = stored
	r.byEmail[user.Email] = user.ID
	return copyOf(stored), nil
}

func (r *Repository) Update(_ context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if user == nil {
		return nil, errors.New("cannot save nil user")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return nil, ports.ErrEmailTaken
	}
	delete(r.byEmail, stored.user.Email)
	r.byEmail[user.Email] = user.ID
	stored.user = user.Clone()
	stored.metadata.UpdatedAt = r.now()
	return copyOf(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return copyOf(stored), nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*projection.Projection[*domain.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return copyOf(r.users[id]), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.byEmail, stored.user.Email)
	delete(r.users, id)
	return nil
}

// List returns accounts oldest first.
func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*projection.Projection[*domain.User], 0, len(r.users))
	for _, stored := range r.users {
		out = append(out, copyOf(stored))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metadata.CreatedAt.Equal(out[j].Metadata.CreatedAt) {
			return out[i].Entity.ID < out[j].Entity.ID
		}
		return out[i].Metadata.CreatedAt.Before(out[j].Metadata.CreatedAt)
	})
	return out, nil
}

func copyOf(stored *storedUser) *projection.Projection[*domain.User] {
	return &projection.Projection[*domain.User]{Entity: stored.user.Clone(), Metadata: stored.metadata}
}
