package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

var (
	ErrAnimalNotFound = errors.New("animal not found")
	// ErrAnimalStale means the animal status did not match the expected prior status.
	ErrAnimalStale = errors.New("animal status changed concurrently")
)

// AnimalSnapshot is the adoptions view of an animal.
type AnimalSnapshot struct {
	ID               string
	ShelterID        string
	Name             string
	Species          string
	Breed            string
	Age              int
	Size             string
	EnergyLevel      int
	GoodWithChildren bool
	GoodWithPets     bool
	ImageURL         string
	Status           domain.AnimalStatus
}

// Traits returns the attributes sent to the compatibility scorer.
func (a AnimalSnapshot) Traits() matching.Traits {
	return matching.Traits{
		AnimalID:         a.ID,
		Species:          a.Species,
		Age:              a.Age,
		Size:             a.Size,
		EnergyLevel:      a.EnergyLevel,
		GoodWithChildren: a.GoodWithChildren,
		GoodWithPets:     a.GoodWithPets,
	}
}

// AnimalStore is the animal catalogue consumed by the adoption workflow.
type AnimalStore interface {
	FindByID(ctx context.Context, id string) (*AnimalSnapshot, error)
	FindByShelter(ctx context.Context, shelterID string) ([]AnimalSnapshot, error)
	FindByStatus(ctx context.Context, status domain.AnimalStatus) ([]AnimalSnapshot, error)
	// UpdateStatus swaps the status when the current one equals expected. An
	// empty expected skips the comparison.
	UpdateStatus(ctx context.Context, id string, status, expected domain.AnimalStatus) error
}
