package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory request store. Each method is atomic on its own;
// multi-step units rely on the caller's transactor.
type Repository struct {
	mu       sync.RWMutex
	requests map[string]*storedRequest
	now      func() time.Time
}

type storedRequest struct {
	request  *domain.Request
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		requests: map[string]*storedRequest{},
		now:      time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, request *domain.Request) (*projection.Projection[*domain.Request], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := r.now()
	return r.insertLocked(request, projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp})
}

func (r *Repository) Restore(_ context.Context, snapshot *projection.Projection[*domain.Request]) error {
	if snapshot == nil {
		return errors.New("cannot restore nil adoption request")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.insertLocked(snapshot.Entity, snapshot.Metadata)
	return err
}

func (r *Repository) insertLocked(request *domain.Request, metadata projection.Metadata) (*projection.Projection[*domain.Request], error) {
	if request == nil {
		return nil, errors.New("cannot save nil adoption request")
	}
	if request.ID == "" {
		return nil, errors.New("adoption request id is required")
	}
	if _, ok := r.requests[request.ID]; ok {
		return nil, errors.New("adoption request id already exists")
	}
	if request.Status == domain.StatusPending && r.hasPendingLocked(request.UserID, request.AnimalID) {
		return nil, ports.ErrDuplicatePending
	}
	stored := &storedRequest{request: request.Clone(), metadata: metadata}
	r.requests[request.ID] = stored
	return projectionCopy(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Request], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.requests[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

func (r *Repository) Transition(_ context.Context, id string, from, to domain.Status, notes string) (*projection.Projection[*domain.Request], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.requests[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if entry.request.Status != from {
		return nil, ports.ErrStaleStatus
	}
	if to == domain.StatusPending && from != domain.StatusPending &&
		r.hasPendingLocked(entry.request.UserID, entry.request.AnimalID) {
		return nil, ports.ErrDuplicatePending
	}
	entry.request.Status = to
	entry.request.ShelterNotes = notes
	entry.metadata.UpdatedAt = r.now()
	return projectionCopy(entry), nil
}

func (r *Repository) RejectPendingForAnimal(_ context.Context, animalID, exceptID, notes string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := r.now()
	rejected := []string{}
	for id, entry := range r.requests {
		if id == exceptID || entry.request.AnimalID != animalID || entry.request.Status != domain.StatusPending {
			continue
		}
		entry.request.Status = domain.StatusRejected
		entry.request.ShelterNotes = notes
		entry.metadata.UpdatedAt = timestamp
		rejected = append(rejected, id)
	}
	sort.Strings(rejected)
	return rejected, nil
}

func (r *Repository) CountPendingForAnimal(_ context.Context, animalID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, entry := range r.requests {
		if entry.request.AnimalID == animalID && entry.request.Status == domain.StatusPending {
			count++
		}
	}
	return count, nil
}

func (r *Repository) HasPending(_ context.Context, userID, animalID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasPendingLocked(userID, animalID), nil
}

func (r *Repository) DeletePending(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.requests[id]
	if !ok {
		return ports.ErrNotFound
	}
	if entry.request.Status != domain.StatusPending {
		return ports.ErrStaleStatus
	}
	delete(r.requests, id)
	return nil
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]*projection.Projection[*domain.Request], error) {
	return r.collect(func(req *domain.Request) bool { return req.UserID == userID }), nil
}

func (r *Repository) ListByAnimals(_ context.Context, animalIDs []string) ([]*projection.Projection[*domain.Request], error) {
	wanted := make(map[string]struct{}, len(animalIDs))
	for _, id := range animalIDs {
		wanted[id] = struct{}{}
	}
	return r.collect(func(req *domain.Request) bool {
		_, ok := wanted[req.AnimalID]
		return ok
	}), nil
}

func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.Request], error) {
	return r.collect(func(*domain.Request) bool { return true }), nil
}

func (r *Repository) collect(keep func(*domain.Request) bool) []*projection.Projection[*domain.Request] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*projection.Projection[*domain.Request], 0)
	for _, entry := range r.requests {
		if keep(entry.request) {
			out = append(out, projectionCopy(entry))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metadata.CreatedAt.Equal(out[j].Metadata.CreatedAt) {
			return out[i].Entity.ID < out[j].Entity.ID
		}
		return out[i].Metadata.CreatedAt.Before(out[j].Metadata.CreatedAt)
	})
	return out
}

func (r *Repository) hasPendingLocked(userID, animalID string) bool {
	for _, entry := range r.requests {
		req := entry.request
		if req.UserID == userID && req.AnimalID == animalID && req.Status == domain.StatusPending {
			return true
		}
	}
	return false
}

func projectionCopy(entry *storedRequest) *projection.Projection[*domain.Request] {
	return &projection.Projection[*domain.Request]{
		Entity:   entry.request.Clone(),
		Metadata: entry.metadata,
	}
}
