package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu      sync.RWMutex
	animals map[string]*storedAnimal
	now     func() time.Time
}

type storedAnimal struct {
	animal   *domain.Animal
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		animals: map[string]*storedAnimal{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Save inserts or replaces an animal while maintaining metadata. The status of
// an existing animal is kept; it only changes through CompareAndSetStatus.
func (r *Repository) Save(_ context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error) {
	if animal == nil {
		return nil, errors.New("cannot save nil animal")
	}
	if animal.ID == "" {
		return nil, errors.New("animal id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now()
	metadata := projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp}
	clone := animal.Clone()
	if entry, ok := r.animals[animal.ID]; ok {
		metadata.CreatedAt = entry.metadata.CreatedAt
		clone.Status = entry.animal.Status
	}
	stored := &storedAnimal{animal: clone, metadata: metadata}
	r.animals[animal.ID] = stored
	return projectionCopy(stored), nil
}

// GetByID fetches an animal if present.
func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Animal], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.animals[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// Delete removes an animal.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.animals[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.animals, id)
	return nil
}

// List returns animals matching filter, oldest first.
func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*projection.Projection[*domain.Animal], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*projection.Projection[*domain.Animal], 0, len(r.animals))
	for _, entry := range r.animals {
		if matches(entry.animal, filter) {
			result = append(result, projectionCopy(entry))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Metadata.CreatedAt.Equal(result[j].Metadata.CreatedAt) {
			return result[i].Entity.ID < result[j].Entity.ID
		}
		return result[i].Metadata.CreatedAt.Before(result[j].Metadata.CreatedAt)
	})
	return result, nil
}

// CompareAndSetStatus swaps the status when the current one equals expected.
func (r *Repository) CompareAndSetStatus(_ context.Context, id string, expected, next domain.Status) error {
	if !next.Valid() {
		return domain.ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.animals[id]
	if !ok {
		return ports.ErrNotFound
	}
	if expected != "" && entry.animal.Status != expected {
		return ports.ErrStaleStatus
	}
	entry.animal.Status = next
	entry.metadata.UpdatedAt = r.now()
	return nil
}

func matches(animal *domain.Animal, filter ports.Filter) bool {
	if filter.Species != "" && animal.Species != filter.Species {
		return false
	}
	if filter.Size != "" && animal.Size != filter.Size {
		return false
	}
	if filter.ShelterID != "" && animal.ShelterID != filter.ShelterID {
		return false
	}
	if filter.GoodWithChildren != nil && animal.GoodWithChildren != *filter.GoodWithChildren {
		return false
	}
	if filter.GoodWithPets != nil && animal.GoodWithPets != *filter.GoodWithPets {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, animal.Status) {
		return false
	}
	if len(filter.IDs) > 0 && !containsID(filter.IDs, animal.ID) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.Status, status domain.Status) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func projectionCopy(entry *storedAnimal) *projection.Projection[*domain.Animal] {
	return &projection.Projection[*domain.Animal]{
		Entity:   entry.animal.Clone(),
		Metadata: entry.metadata,
	}
}
