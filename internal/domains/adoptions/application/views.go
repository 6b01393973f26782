package application

import (
	"context"
	"log/slog"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

// enricher joins requests with animal and party summaries, resolving each
// related record once per call.
type enricher struct {
	s       *Service
	animals map[string]*ports.AnimalSnapshot
	parties map[string]*ports.Party
}

func newEnricher(s *Service) *enricher {
	return &enricher{
		s:       s,
		animals: map[string]*ports.AnimalSnapshot{},
		parties: map[string]*ports.Party{},
	}
}

// seed pre-populates animals already loaded by the caller.
func (e *enricher) seed(animals []ports.AnimalSnapshot) {
	for i := range animals {
		animal := animals[i]
		e.animals[animal.ID] = &animal
	}
}

func (e *enricher) animal(ctx context.Context, id string) *ports.AnimalSnapshot {
	if cached, ok := e.animals[id]; ok {
		return cached
	}
	animal, err := e.s.animals.FindByID(ctx, id)
	if err != nil {
		e.s.logger.LogAttrs(ctx, slog.LevelDebug, "animal summary unavailable",
			slog.String("animal.id", id), slog.String("error", err.Error()))
		animal = nil
	}
	e.animals[id] = animal
	return animal
}

func (e *enricher) party(ctx context.Context, id string) *ports.Party {
	if id == "" || e.s.directory == nil {
		return nil
	}
	if cached, ok := e.parties[id]; ok {
		return cached
	}
	party, err := e.s.directory.Lookup(ctx, id)
	if err != nil {
		e.s.logger.LogAttrs(ctx, slog.LevelDebug, "party summary unavailable",
			slog.String("party.id", id), slog.String("error", err.Error()))
		party = nil
	}
	e.parties[id] = party
	return party
}

func (e *enricher) view(ctx context.Context, p *types.RequestProjection) *types.RequestView {
	view := &types.RequestView{
		Request:   p.Entity.Clone(),
		Metadata:  p.Metadata,
		Requester: partySummary(e.party(ctx, p.Entity.UserID)),
	}
	if animal := e.animal(ctx, p.Entity.AnimalID); animal != nil {
		view.Animal = &types.AnimalSummary{
			ID:        animal.ID,
			Name:      animal.Name,
			Species:   animal.Species,
			Breed:     animal.Breed,
			ImageURL:  animal.ImageURL,
			Status:    animal.Status,
			ShelterID: animal.ShelterID,
		}
		view.Shelter = partySummary(e.party(ctx, animal.ShelterID))
	}
	return view
}

func (e *enricher) views(ctx context.Context, items []*types.RequestProjection) []*types.RequestView {
	out := make([]*types.RequestView, 0, len(items))
	for _, item := range items {
		out = append(out, e.view(ctx, item))
	}
	return out
}

func partySummary(party *ports.Party) *types.PartySummary {
	if party == nil {
		return nil
	}
	return &types.PartySummary{ID: party.ID, Name: party.Name, Email: party.Email}
}
