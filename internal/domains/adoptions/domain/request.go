package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyUser         = errors.New("adoption request requires a user")
	ErrEmptyAnimal       = errors.New("adoption request requires an animal")
	ErrInvalidStatus     = errors.New("status must be one of pending, approved, rejected, completed")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrTerminalStatus    = errors.New("request already decided")
	ErrScoreOutOfRange   = errors.New("compatibility score must be between 0 and 100")
)

const (
	// AdoptedElsewhereNote is written on competing requests rejected by an approval.
	AdoptedElsewhereNote = "Animal adopted by another user"
	// DefaultFallbackScore is captured when the scorer cannot answer.
	DefaultFallbackScore = 75.0
)

// Status is the lifecycle state of an adoption request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCompleted
}

// Finalizes reports whether reaching s adopts the animal.
func (s Status) Finalizes() bool {
	return s == StatusApproved || s == StatusCompleted
}

// ParseStatus normalises raw input.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// transitions lists the reachable statuses per non-terminal status. pending ->
// pending is accepted so shelters can amend notes.
var transitions = map[Status][]Status{
	StatusPending: {StatusPending, StatusApproved, StatusRejected, StatusCompleted},
}

// CanTransition encodes the request state machine.
func CanTransition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	if from.Terminal() {
		return ErrTerminalStatus
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// AnimalStatus mirrors the availability of the requested animal.
type AnimalStatus string

const (
	AnimalAvailable AnimalStatus = "available"
	AnimalPending   AnimalStatus = "pending"
	AnimalAdopted   AnimalStatus = "adopted"
)

// Request is a user's application to adopt one animal.
type Request struct {
	ID                 string
	UserID             string
	AnimalID           string
	Status             Status
	CompatibilityScore *float64
	Message            string
	ShelterNotes       string
}

// NewRequest builds a pending request. Message and notes are never nil.
func NewRequest(id, userID, animalID, message string, score *float64) (*Request, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUser
	}
	if strings.TrimSpace(animalID) == "" {
		return nil, ErrEmptyAnimal
	}
	if score != nil && (*score < 0 || *score > 100) {
		return nil, ErrScoreOutOfRange
	}
	r := &Request{
		ID:       id,
		UserID:   userID,
		AnimalID: animalID,
		Status:   StatusPending,
		Message:  strings.TrimSpace(message),
	}
	if score != nil {
		value := *score
		r.CompatibilityScore = &value
	}
	return r, nil
}

// Decide moves the request to next and records notes verbatim.
func (r *Request) Decide(next Status, notes string) error {
	if err := CanTransition(r.Status, next); err != nil {
		return err
	}
	r.Status = next
	r.ShelterNotes = notes
	return nil
}

// Clone returns a deep copy.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	if r.CompatibilityScore != nil {
		score := *r.CompatibilityScore
		clone.CompatibilityScore = &score
	}
	return &clone
}
