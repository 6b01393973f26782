package ports

import (
	"context"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
)

// WorkflowOrchestrator runs shelter decisions durably.
type WorkflowOrchestrator interface {
	DecideRequest(ctx context.Context, input types.UpdateStatusInput) (*types.RequestView, error)
}
