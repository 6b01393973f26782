// Package matching describes adopter/animal compatibility scoring shared by
// the animals and adoptions contexts.
package matching

import (
	"context"
	"errors"
)

const (
	// FallbackScore is used whenever the scorer cannot answer.
	FallbackScore = 75.0
	// FallbackRecommendation accompanies FallbackScore in responses.
	FallbackRecommendation = "AI service unavailable - showing estimated compatibility"
)

// ErrProfileNotFound is returned by a ProfileSource for unknown users.
var ErrProfileNotFound = errors.New("lifestyle profile not found")

// Profile is the adopter lifestyle sent to the scorer.
type Profile struct {
	HousingType   string
	AvailableTime int
	Experience    string
	HasChildren   bool
	HasOtherPets  bool
}

// Traits are the animal attributes sent to the scorer.
type Traits struct {
	AnimalID         string
	Species          string
	Age              int
	Size             string
	EnergyLevel      int
	GoodWithChildren bool
	GoodWithPets     bool
}

// Match is a single compatibility result.
type Match struct {
	AnimalID       string
	Score          float64
	Recommendation string
}

// Scorer is the external compatibility service.
type Scorer interface {
	Score(ctx context.Context, profile Profile, traits Traits) (Match, error)
	ScoreBatch(ctx context.Context, profile Profile, traits []Traits) ([]Match, error)
}

// ProfileSource resolves a user's lifestyle profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (Profile, error)
}

// Fallback returns the estimated match for animalID.
func Fallback(animalID string) Match {
	return Match{AnimalID: animalID, Score: FallbackScore, Recommendation: FallbackRecommendation}
}

// Recommendation buckets a score the same way the scorer does.
func Recommendation(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 65:
		return "good"
	case score >= 45:
		return "moderate"
	default:
		return "low"
	}
}
