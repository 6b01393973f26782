package types

import (
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// AnimalProjection is an animal plus persistence metadata.
type AnimalProjection = projection.Projection[*domain.Animal]

// CreateAnimalInput lists a new animal under the acting shelter.
type CreateAnimalInput struct {
	Actor            identity.Actor
	Name             string
	Species          string
	Breed            string
	Age              int
	Size             string
	EnergyLevel      int
	GoodWithChildren *bool
	GoodWithPets     *bool
	Description      string
	PhotoURLs        []string
}

// UpdateAnimalInput carries a partial update; nil fields are left untouched.
type UpdateAnimalInput struct {
	Actor            identity.Actor
	ID               string
	Name             *string
	Species          *string
	Breed            *string
	Age              *int
	Size             *string
	EnergyLevel      *int
	GoodWithChildren *bool
	GoodWithPets     *bool
	Description      *string
	PhotoURLs        *[]string
}

// DeleteAnimalInput identifies the animal to remove.
type DeleteAnimalInput struct {
	Actor identity.Actor
	ID    string
}

// ListAnimalsInput filters the catalogue. Status defaults to available.
type ListAnimalsInput struct {
	Species          *string
	Size             *string
	Status           *string
	GoodWithChildren *bool
	GoodWithPets     *bool
}

// CompatibilityInput asks how well the actor matches one animal.
type CompatibilityInput struct {
	Actor    identity.Actor
	AnimalID string
}

// RecommendationsInput asks for a ranked list; empty AnimalIDs means every available animal.
type RecommendationsInput struct {
	Actor     identity.Actor
	AnimalIDs []string
}

// CompatibilityResult is a scored animal.
type CompatibilityResult struct {
	AnimalID       string
	Score          float64
	Recommendation string
	Estimated      bool
}

// Recommendation pairs an animal with its score.
type Recommendation struct {
	Animal        *AnimalProjection
	Compatibility CompatibilityResult
}
