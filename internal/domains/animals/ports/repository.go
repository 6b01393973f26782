package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("animal not found")
	// ErrStaleStatus means the stored status did not match the expected prior status.
	ErrStaleStatus = errors.New("animal status changed concurrently")
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Species          domain.Species
	Size             domain.Size
	Statuses         []domain.Status
	GoodWithChildren *bool
	GoodWithPets     *bool
	ShelterID        string
	IDs              []string
}

type Repository interface {
	Save(ctx context.Context, animal *domain.Animal) (*projection.Projection[*domain.Animal], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Animal], error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter) ([]*projection.Projection[*domain.Animal], error)
	// CompareAndSetStatus moves the animal to next only when its current status
	// equals expected. An empty expected skips the comparison.
	CompareAndSetStatus(ctx context.Context, id string, expected, next domain.Status) error
}
