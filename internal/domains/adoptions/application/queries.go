package application

import (
	"context"
	"fmt"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// Get loads one request visible to the actor.
func (s *Service) Get(ctx context.Context, input types.GetRequestInput) (*types.RequestView, error) {
	stored, err := s.repo.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	e := newEnricher(s)
	shelterID := ""
	if animal := e.animal(ctx, stored.Entity.AnimalID); animal != nil {
		shelterID = animal.ShelterID
	}
	if !identity.CanViewRequest(input.Actor, stored.Entity.UserID, shelterID) {
		return nil, fmt.Errorf("%w: request %s is not visible to %s", ErrForbidden, stored.Entity.ID, input.Actor.UserID)
	}
	return e.view(ctx, stored), nil
}

// ListForUser returns the user's requests, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*types.RequestView, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	sortNewestFirst(items)
	return newEnricher(s).views(ctx, items), nil
}

// ListForShelter returns every request against the shelter's animals, newest first.
func (s *Service) ListForShelter(ctx context.Context, input types.ListForShelterInput) ([]*types.RequestView, error) {
	if !identity.CanListShelter(input.Actor, input.ShelterID) {
		return nil, fmt.Errorf("%w: requests of shelter %s are not visible to %s", ErrForbidden, input.ShelterID, input.Actor.UserID)
	}
	animals, err := s.animals.FindByShelter(ctx, input.ShelterID)
	if err != nil {
		return nil, mapError(err)
	}
	if len(animals) == 0 {
		return []*types.RequestView{}, nil
	}
	ids := make([]string, 0, len(animals))
	for _, animal := range animals {
		ids = append(ids, animal.ID)
	}
	items, err := s.repo.ListByAnimals(ctx, ids)
	if err != nil {
		return nil, mapError(err)
	}
	sortNewestFirst(items)
	e := newEnricher(s)
	e.seed(animals)
	return e.views(ctx, items), nil
}

// ListForActor lists the requests in the actor's role scope.
func (s *Service) ListForActor(ctx context.Context, actor identity.Actor) ([]*types.RequestView, error) {
	switch identity.ListingScope(actor) {
	case identity.ScopeOwnRequests:
		return s.ListForUser(ctx, actor.UserID)
	case identity.ScopeShelterRequests:
		return s.ListForShelter(ctx, types.ListForShelterInput{Actor: actor, ShelterID: actor.UserID})
	case identity.ScopeAll:
		items, err := s.repo.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		sortNewestFirst(items)
		return newEnricher(s).views(ctx, items), nil
	}
	return nil, fmt.Errorf("%w: role %q cannot list requests", ErrForbidden, actor.Role)
}

func sortNewestFirst(items []*types.RequestProjection) {
	projection.SortNewestFirst(items, func(p *types.RequestProjection) projection.Metadata { return p.Metadata })
}
