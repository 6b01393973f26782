package mapper

import (
	"time"

	animaltypes "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Animal is the HTTP representation of a listing.
type Animal struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Species          string    `json:"species"`
	Breed            string    `json:"breed"`
	Age              int       `json:"age"`
	Size             string    `json:"size"`
	EnergyLevel      int       `json:"energyLevel"`
	GoodWithChildren bool      `json:"goodWithChildren"`
	GoodWithPets     bool      `json:"goodWithPets"`
	Description      string    `json:"description"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	PhotoURLs        []string  `json:"photoUrls"`
	Status           string    `json:"status"`
	ShelterID        string    `json:"shelterId"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

// CreateAnimal is the POST /animals payload.
type CreateAnimal struct {
	Name             string   `json:"name" binding:"required"`
	Species          string   `json:"species" binding:"required"`
	Breed            string   `json:"breed" binding:"required"`
	Age              int      `json:"age"`
	Size             string   `json:"size" binding:"required"`
	EnergyLevel      int      `json:"energyLevel"`
	GoodWithChildren *bool    `json:"goodWithChildren,omitempty"`
	GoodWithPets     *bool    `json:"goodWithPets,omitempty"`
	Description      string   `json:"description" binding:"required"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	PhotoURLs        []string `json:"photoUrls,omitempty"`
}

// UpdateAnimal captures a partial update while preserving field presence.
type UpdateAnimal struct {
	Name             *string   `json:"name,omitempty"`
	Species          *string   `json:"species,omitempty"`
	Breed            *string   `json:"breed,omitempty"`
	Age              *int      `json:"age,omitempty"`
	Size             *string   `json:"size,omitempty"`
	EnergyLevel      *int      `json:"energyLevel,omitempty"`
	GoodWithChildren *bool     `json:"goodWithChildren,omitempty"`
	GoodWithPets     *bool     `json:"goodWithPets,omitempty"`
	Description      *string   `json:"description,omitempty"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	PhotoURLs        *[]string `json:"photoUrls,omitempty"`
}

// RecommendationsRequest optionally restricts the ranking to the given animals.
type RecommendationsRequest struct {
	AnimalIDs []string `json:"animalIds,omitempty"`
}

// Compatibility mirrors the scorer response shape.
type Compatibility struct {
	AnimalID       string  `json:"animal_id,omitempty"`
	Score          float64 `json:"compatibility_score"`
	Recommendation string  `json:"recommendation"`
	Estimated      bool    `json:"estimated,omitempty"`
}

// Prediction is one ranked animal.
type Prediction struct {
	Compatibility
	Animal Animal `json:"animal"`
}

// Recommendations wraps the ranked list.
type Recommendations struct {
	Predictions []Prediction `json:"predictions"`
}

// ToCreateInput maps the payload; a lone imageUrl becomes the first photo.
func ToCreateInput(actor identity.Actor, payload CreateAnimal) animaltypes.CreateAnimalInput {
	return animaltypes.CreateAnimalInput{
		Actor:            actor,
		Name:             payload.Name,
		Species:          payload.Species,
		Breed:            payload.Breed,
		Age:              payload.Age,
		Size:             payload.Size,
		EnergyLevel:      payload.EnergyLevel,
		GoodWithChildren: payload.GoodWithChildren,
		GoodWithPets:     payload.GoodWithPets,
		Description:      payload.Description,
		PhotoURLs:        photos(payload.ImageURL, payload.PhotoURLs),
	}
}

// ToUpdateInput maps a partial update for the animal id.
func ToUpdateInput(actor identity.Actor, id string, payload UpdateAnimal) animaltypes.UpdateAnimalInput {
	input := animaltypes.UpdateAnimalInput{
		Actor:            actor,
		ID:               id,
		Name:             payload.Name,
		Species:          payload.Species,
		Breed:            payload.Breed,
		Age:              payload.Age,
		Size:             payload.Size,
		EnergyLevel:      payload.EnergyLevel,
		GoodWithChildren: payload.GoodWithChildren,
		GoodWithPets:     payload.GoodWithPets,
		Description:      payload.Description,
		PhotoURLs:        payload.PhotoURLs,
	}
	if input.PhotoURLs == nil && payload.ImageURL != nil {
		urls := photos(*payload.ImageURL, nil)
		input.PhotoURLs = &urls
	}
	return input
}

func photos(imageURL string, urls []string) []string {
	if len(urls) > 0 || imageURL == "" {
		return urls
	}
	return []string{imageURL}
}

// FromProjection converts an animal projection into its transport representation.
func FromProjection(projection *animaltypes.AnimalProjection) Animal {
	if projection == nil || projection.Entity == nil {
		return Animal{}
	}
	a := projection.Entity
	photoURLs := a.PhotoURLs
	if photoURLs == nil {
		photoURLs = []string{}
	}
	return Animal{
		ID:               a.ID,
		Name:             a.Name,
		Species:          string(a.Species),
		Breed:            a.Breed,
		Age:              a.Age,
		Size:             string(a.Size),
		EnergyLevel:      a.EnergyLevel,
		GoodWithChildren: a.GoodWithChildren,
		GoodWithPets:     a.GoodWithPets,
		Description:      a.Description,
		ImageURL:         a.ImageURL(),
		PhotoURLs:        photoURLs,
		Status:           string(a.Status),
		ShelterID:        a.ShelterID,
		CreatedAt:        projection.Metadata.CreatedAt,
		UpdatedAt:        projection.Metadata.UpdatedAt,
	}
}

func FromProjectionList(items []*animaltypes.AnimalProjection) []Animal {
	result := make([]Animal, 0, len(items))
	for _, item := range items {
		result = append(result, FromProjection(item))
	}
	return result
}

func FromCompatibility(result *animaltypes.CompatibilityResult) Compatibility {
	if result == nil {
		return Compatibility{}
	}
	return Compatibility{
		AnimalID:       result.AnimalID,
		Score:          result.Score,
		Recommendation: result.Recommendation,
		Estimated:      result.Estimated,
	}
}

// FromRecommendations keeps the ranking order.
func FromRecommendations(items []animaltypes.Recommendation) Recommendations {
	out := Recommendations{Predictions: make([]Prediction, 0, len(items))}
	for i := range items {
		out.Predictions = append(out.Predictions, Prediction{
			Compatibility: FromCompatibility(&items[i].Compatibility),
			Animal:        FromProjection(items[i].Animal),
		})
	}
	return out
}
