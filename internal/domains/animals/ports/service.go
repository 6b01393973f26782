package ports

import (
	"context"

	animaltypes "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
)

// Service defines the animals use cases exposed to adapters (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input animaltypes.CreateAnimalInput) (*animaltypes.AnimalProjection, error)
	Get(ctx context.Context, id string) (*animaltypes.AnimalProjection, error)
	List(ctx context.Context, input animaltypes.ListAnimalsInput) ([]*animaltypes.AnimalProjection, error)
	ListByShelter(ctx context.Context, shelterID string) ([]*animaltypes.AnimalProjection, error)
	Update(ctx context.Context, input animaltypes.UpdateAnimalInput) (*animaltypes.AnimalProjection, error)
	Delete(ctx context.Context, input animaltypes.DeleteAnimalInput) error
	Compatibility(ctx context.Context, input animaltypes.CompatibilityInput) (*animaltypes.CompatibilityResult, error)
	Recommendations(ctx context.Context, input animaltypes.RecommendationsInput) ([]animaltypes.Recommendation, error)
}
