package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

// ErrPartyNotFound is returned by a Directory for unknown users.
var ErrPartyNotFound = errors.New("party not found")

// Party is a user or shelter account as seen by the adoption workflow.
type Party struct {
	ID      string
	Name    string
	Email   string
	Role    identity.Role
	Profile matching.Profile
}

// Directory resolves account details for requesters and shelters.
type Directory interface {
	Lookup(ctx context.Context, id string) (*Party, error)
}

// CompatibilityScorer scores one adopter/animal pair.
type CompatibilityScorer interface {
	Score(ctx context.Context, profile matching.Profile, traits matching.Traits) (matching.Match, error)
}
