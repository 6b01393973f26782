package mapper

import (
	"time"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// CreateRequest is the POST /adoption-requests payload.
type CreateRequest struct {
	AnimalID string `json:"animalId" binding:"required"`
	Message  string `json:"message,omitempty"`
}

// UpdateStatus is the PATCH /adoption-requests/:id/status payload.
type UpdateStatus struct {
	Status       string `json:"status" binding:"required"`
	ShelterNotes string `json:"shelterNotes,omitempty"`
}

// AnimalSummary is the animal embedded in a request listing.
type AnimalSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Status    string `json:"status"`
	ShelterID string `json:"shelterId"`
}

// Party is the requester or shelter embedded in a request listing.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AdoptionRequest is the HTTP representation of a request and its related records.
type AdoptionRequest struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"userId"`
	AnimalID           string         `json:"animalId"`
	Status             string         `json:"status"`
	CompatibilityScore *float64       `json:"compatibilityScore,omitempty"`
	Message            string         `json:"message"`
	ShelterNotes       string         `json:"shelterNotes"`
	Animal             *AnimalSummary `json:"animal,omitempty"`
	Shelter            *Party         `json:"shelter,omitempty"`
	User               *Party         `json:"user,omitempty"`
	CreatedAt          time.Time      `json:"createdAt,omitempty"`
	UpdatedAt          time.Time      `json:"updatedAt,omitempty"`
}

// ToCreateInput maps the payload and the optional Idempotency-Key header.
func ToCreateInput(actor identity.Actor, payload CreateRequest, idempotencyKey string) adoptiontypes.CreateRequestInput {
	return adoptiontypes.CreateRequestInput{
		Actor:          actor,
		AnimalID:       payload.AnimalID,
		Message:        payload.Message,
		IdempotencyKey: idempotencyKey,
	}
}

// FromView converts a request view into its transport representation.
func FromView(view *adoptiontypes.RequestView) AdoptionRequest {
	if view == nil || view.Request == nil {
		return AdoptionRequest{}
	}
	r := view.Request
	out := AdoptionRequest{
		ID:                 r.ID,
		UserID:             r.UserID,
		AnimalID:           r.AnimalID,
		Status:             string(r.Status),
		CompatibilityScore: r.CompatibilityScore,
		Message:            r.Message,
		ShelterNotes:       r.ShelterNotes,
		Shelter:            fromParty(view.Shelter),
		User:               fromParty(view.Requester),
		CreatedAt:          view.Metadata.CreatedAt,
		UpdatedAt:          view.Metadata.UpdatedAt,
	}
	if a := view.Animal; a != nil {
		out.Animal = &AnimalSummary{
			ID:        a.ID,
			Name:      a.Name,
			Species:   a.Species,
			Breed:     a.Breed,
			ImageURL:  a.ImageURL,
			Status:    string(a.Status),
			ShelterID: a.ShelterID,
		}
	}
	return out
}

func FromViewList(views []*adoptiontypes.RequestView) []AdoptionRequest {
	result := make([]AdoptionRequest, 0, len(views))
	for _, view := range views {
		result = append(result, FromView(view))
	}
	return result
}

func fromParty(p *adoptiontypes.PartySummary) *Party {
	if p == nil {
		return nil
	}
	return &Party{ID: p.ID, Name: p.Name, Email: p.Email}
}
