// Package directory exposes user accounts to the other bounded contexts.
package directory

import (
	"context"
	"errors"

	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

var (
	_ adoptionports.Directory = (*Directory)(nil)
	_ matching.ProfileSource  = (*Directory)(nil)
)

// Directory reads accounts from the users repository.
type Directory struct {
	repo ports.Repository
}

func New(repo ports.Repository) *Directory {
	return &Directory{repo: repo}
}

// Lookup returns the party for id, or ErrPartyNotFound.
func (d *Directory) Lookup(ctx context.Context, id string) (*adoptionports.Party, error) {
	found, err := d.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, adoptionports.ErrPartyNotFound
		}
		return nil, err
	}
	user := found.Entity
	return &adoptionports.Party{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Profile: user.Profile.Matching(),
	}, nil
}

// Profile returns the lifestyle profile used for compatibility scoring.
func (d *Directory) Profile(ctx context.Context, userID string) (matching.Profile, error) {
	found, err := d.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return matching.Profile{}, matching.ErrProfileNotFound
		}
		return matching.Profile{}, err
	}
	return found.Entity.Profile.Matching(), nil
}
