package compatibility

import (
	"context"
	"fmt"

	client "github.com/Apurer/pet-adoption-api/internal/clients/http/compatibility"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

// Predictor is the scorer client surface.
type Predictor interface {
	Predict(ctx context.Context, req client.PredictRequest) (client.PredictResponse, error)
	PredictBatch(ctx context.Context, req client.BatchRequest) (client.BatchResponse, error)
}

// Scorer adapts the HTTP scorer to matching.Scorer.
type Scorer struct {
	predictor Predictor
}

func NewScorer(predictor Predictor) *Scorer {
	return &Scorer{predictor: predictor}
}

func (s *Scorer) Score(ctx context.Context, profile matching.Profile, traits matching.Traits) (matching.Match, error) {
	resp, err := s.predictor.Predict(ctx, client.PredictRequest{
		User:   toUser(profile),
		Animal: toAnimal(traits, false),
	})
	if err != nil {
		return matching.Match{}, err
	}
	return toMatch(traits.AnimalID, resp.CompatibilityScore, resp.Recommendation)
}

// ScoreBatch returns one match per prediction; animals the scorer skipped are
// left out.
func (s *Scorer) ScoreBatch(ctx context.Context, profile matching.Profile, traits []matching.Traits) ([]matching.Match, error) {
	if len(traits) == 0 {
		return []matching.Match{}, nil
	}
	animals := make([]client.Animal, 0, len(traits))
	for _, t := range traits {
		animals = append(animals, toAnimal(t, true))
	}
	resp, err := s.predictor.PredictBatch(ctx, client.BatchRequest{User: toUser(profile), Animals: animals})
	if err != nil {
		return nil, err
	}
	matches := make([]matching.Match, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		match, err := toMatch(p.AnimalID, p.CompatibilityScore, p.Recommendation)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func toUser(p matching.Profile) client.User {
	return client.User{
		HousingType:   p.HousingType,
		AvailableTime: p.AvailableTime,
		Experience:    p.Experience,
		HasChildren:   p.HasChildren,
		HasOtherPets:  p.HasOtherPets,
	}
}

func toAnimal(t matching.Traits, withID bool) client.Animal {
	a := client.Animal{
		Species:          t.Species,
		Age:              t.Age,
		Size:             t.Size,
		EnergyLevel:      t.EnergyLevel,
		GoodWithChildren: t.GoodWithChildren,
		GoodWithPets:     t.GoodWithPets,
	}
	if withID {
		a.ID = t.AnimalID
	}
	return a
}

func toMatch(animalID string, score float64, recommendation string) (matching.Match, error) {
	if score < 0 || score > 100 {
		return matching.Match{}, fmt.Errorf("score %.2f for animal %s out of range", score, animalID)
	}
	if recommendation == "" {
		recommendation = matching.Recommendation(score)
	}
	return matching.Match{AnimalID: animalID, Score: score, Recommendation: recommendation}, nil
}

var _ matching.Scorer = (*Scorer)(nil)
