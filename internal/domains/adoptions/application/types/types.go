package types

import (
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// RequestProjection is a stored request plus its timestamps.
type RequestProjection = projection.Projection[*domain.Request]

// CreateRequestInput carries the data for a new adoption request.
type CreateRequestInput struct {
	Actor    identity.Actor
	AnimalID string
	Message  string
	// IdempotencyKey is optional; retries with the same key replay the first result.
	IdempotencyKey string
}

// UpdateStatusInput is a shelter (or admin) decision on a request.
type UpdateStatusInput struct {
	Actor        identity.Actor
	RequestID    string
	Status       domain.Status
	ShelterNotes string
}

// RemoveRequestInput withdraws a pending request.
type RemoveRequestInput struct {
	Actor     identity.Actor
	RequestID string
}

// ListForShelterInput lists every request against a shelter's animals.
type ListForShelterInput struct {
	Actor     identity.Actor
	ShelterID string
}

// GetRequestInput loads one request.
type GetRequestInput struct {
	Actor     identity.Actor
	RequestID string
}

// AnimalSummary is the slice of the animal shown next to a request.
type AnimalSummary struct {
	ID        string
	Name      string
	Species   string
	Breed     string
	ImageURL  string
	Status    domain.AnimalStatus
	ShelterID string
}

// PartySummary identifies a user or shelter.
type PartySummary struct {
	ID    string
	Name  string
	Email string
}

// RequestView is a request joined with the entities around it. Summaries are
// nil when the related record could not be resolved.
type RequestView struct {
	Request   *domain.Request
	Metadata  projection.Metadata
	Animal    *AnimalSummary
	Shelter   *PartySummary
	Requester *PartySummary
}

// ReconcileReport counts the animals repaired by a reconciliation pass.
type ReconcileReport struct {
	Released []string
	Held     []string
	Adopted  []string
	Skipped  int
}
