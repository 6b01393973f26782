package ports

import (
	"context"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Service exposes the adoption workflow to adapters.
type Service interface {
	CreateRequest(ctx context.Context, input types.CreateRequestInput) (*types.RequestView, error)
	UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.RequestView, error)
	RemoveRequest(ctx context.Context, input types.RemoveRequestInput) error
	Get(ctx context.Context, input types.GetRequestInput) (*types.RequestView, error)
	ListForUser(ctx context.Context, userID string) ([]*types.RequestView, error)
	ListForShelter(ctx context.Context, input types.ListForShelterInput) ([]*types.RequestView, error)
	ListForActor(ctx context.Context, actor identity.Actor) ([]*types.RequestView, error)
	Reconcile(ctx context.Context) (*types.ReconcileReport, error)
}
