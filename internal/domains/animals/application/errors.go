package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid animal input")
	// ErrForbidden signals the caller does not own the animal.
	ErrForbidden = errors.New("not allowed to manage this animal")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyBreed) ||
		errors.Is(err, domain.ErrEmptyShelter) ||
		errors.Is(err, domain.ErrEmptyDescription) ||
		errors.Is(err, domain.ErrInvalidSpecies) ||
		errors.Is(err, domain.ErrInvalidSize) ||
		errors.Is(err, domain.ErrInvalidAge) ||
		errors.Is(err, domain.ErrInvalidEnergy) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
