// Package animals adapts the animals context repository to the adoption
// workflow's AnimalStore port.
package animals

import (
	"context"
	"errors"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	animaldomain "github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	animalports "github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.AnimalStore = (*Store)(nil)

// Store reads and updates animals through the animals repository.
type Store struct {
	repo animalports.Repository
}

func NewStore(repo animalports.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) FindByID(ctx context.Context, id string) (*ports.AnimalSnapshot, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	snapshot := toSnapshot(found)
	return &snapshot, nil
}

func (s *Store) FindByShelter(ctx context.Context, shelterID string) ([]ports.AnimalSnapshot, error) {
	return s.list(ctx, animalports.Filter{ShelterID: shelterID})
}

func (s *Store) FindByStatus(ctx context.Context, status adoptiondomain.AnimalStatus) ([]ports.AnimalSnapshot, error) {
	return s.list(ctx, animalports.Filter{Statuses: []animaldomain.Status{animaldomain.Status(status)}})
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status, expected adoptiondomain.AnimalStatus) error {
	return translate(s.repo.CompareAndSetStatus(ctx, id, animaldomain.Status(expected), animaldomain.Status(status)))
}

func (s *Store) list(ctx context.Context, filter animalports.Filter) ([]ports.AnimalSnapshot, error) {
	found, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]ports.AnimalSnapshot, 0, len(found))
	for _, item := range found {
		out = append(out, toSnapshot(item))
	}
	return out, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, animalports.ErrNotFound):
		return ports.ErrAnimalNotFound
	case errors.Is(err, animalports.ErrStaleStatus):
		return ports.ErrAnimalStale
	}
	return err
}

func toSnapshot(p *projection.Projection[*animaldomain.Animal]) ports.AnimalSnapshot {
	a := p.Entity
	return ports.AnimalSnapshot{
		ID:               a.ID,
		ShelterID:        a.ShelterID,
		Name:             a.Name,
		Species:          string(a.Species),
		Breed:            a.Breed,
		Age:              a.Age,
		Size:             string(a.Size),
		EnergyLevel:      a.EnergyLevel,
		GoodWithChildren: a.GoodWithChildren,
		GoodWithPets:     a.GoodWithPets,
		ImageURL:         a.ImageURL(),
		Status:           adoptiondomain.AnimalStatus(a.Status),
	}
}
