package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

var (
	// ErrNotFound signals a missing request or animal.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState signals an operation that the current status does not allow.
	ErrInvalidState = errors.New("invalid state")
	// ErrDuplicateRequest signals the user already has a pending request for the animal.
	ErrDuplicateRequest = errors.New("duplicate adoption request")
	// ErrForbidden signals the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict signals a concurrent modification was detected.
	ErrConflict = errors.New("concurrent modification")
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid adoption input")
	// ErrScorerUnavailable is logged and replaced by the fallback score; it is never returned.
	ErrScorerUnavailable = errors.New("compatibility scorer unavailable")
	// ErrIdempotencyConflict signals an Idempotency-Key reused with a different payload.
	ErrIdempotencyConflict = ports.ErrIdempotencyConflict
)

// StateError reports the expected and actual status of an entity.
type StateError struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
	Err      error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s is %s, expected %s: %v", e.Entity, e.ID, e.Actual, e.Expected, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func invalidState(entity, id, expected, actual string) error {
	return &StateError{Entity: entity, ID: id, Expected: expected, Actual: actual, Err: ErrInvalidState}
}

func conflict(entity, id, expected, actual string) error {
	return &StateError{Entity: entity, ID: id, Expected: expected, Actual: actual, Err: ErrConflict}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, ports.ErrAnimalNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrDuplicatePending):
		return fmt.Errorf("%w: %w", ErrDuplicateRequest, err)
	case errors.Is(err, ports.ErrStaleStatus), errors.Is(err, ports.ErrAnimalStale):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrTerminalStatus), errors.Is(err, domain.ErrInvalidTransition):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, domain.ErrEmptyUser),
		errors.Is(err, domain.ErrEmptyAnimal),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrScoreOutOfRange):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
