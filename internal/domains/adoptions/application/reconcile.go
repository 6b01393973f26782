package application

import (
	"context"
	"errors"
	"log/slog"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

// Reconcile repairs animal statuses that drifted from their requests. Pending
// animals without a pending request are released, available animals with one
// are held as pending, and animals with an approved or completed request are
// marked adopted. Every fix is a
// compare-and-set, so animals touched concurrently are skipped.
func (s *Service) Reconcile(ctx context.Context) (*types.ReconcileReport, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	pendingCount := map[string]int{}
	finalized := map[string]bool{}
	for _, item := range requests {
		switch {
		case item.Entity.Status == domain.StatusPending:
			pendingCount[item.Entity.AnimalID]++
		case item.Entity.Status.Finalizes():
			finalized[item.Entity.AnimalID] = true
		}
	}

	report := &types.ReconcileReport{Released: []string{}, Held: []string{}, Adopted: []string{}}
	for _, status := range []domain.AnimalStatus{domain.AnimalPending, domain.AnimalAvailable} {
		animals, err := s.animals.FindByStatus(ctx, status)
		if err != nil {
			return report, mapError(err)
		}
		for _, animal := range animals {
			var next domain.AnimalStatus
			switch {
			case finalized[animal.ID]:
				next = domain.AnimalAdopted
			case animal.Status == domain.AnimalPending && pendingCount[animal.ID] == 0:
				next = domain.AnimalAvailable
			case animal.Status == domain.AnimalAvailable && pendingCount[animal.ID] > 0:
				next = domain.AnimalPending
			default:
				continue
			}
			if err := s.animals.UpdateStatus(ctx, animal.ID, next, animal.Status); err != nil {
				if errors.Is(err, ports.ErrAnimalStale) || errors.Is(err, ports.ErrAnimalNotFound) {
					report.Skipped++
					continue
				}
				return report, mapError(err)
			}
			s.logger.LogAttrs(ctx, slog.LevelInfo, "animal status reconciled",
				slog.String("animal.id", animal.ID),
				slog.String("from", string(animal.Status)),
				slog.String("to", string(next)))
			switch next {
			case domain.AnimalAdopted:
				report.Adopted = append(report.Adopted, animal.ID)
			case domain.AnimalPending:
				report.Held = append(report.Held, animal.ID)
			default:
				report.Released = append(report.Released, animal.ID)
			}
		}
	}
	return report, nil
}
