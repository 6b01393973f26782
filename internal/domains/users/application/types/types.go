package types

import (
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// UserProjection is a user plus persistence metadata.
type UserProjection = projection.Projection[*domain.User]

// ProfileInput carries lifestyle fields; nil fields keep their current value.
type ProfileInput struct {
	HousingType   *string
	AvailableTime *int
	Experience    *string
	HasChildren   *bool
	HasOtherPets  *bool
}

// RegisterInput creates an account. Role defaults to user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
	Phone    string
	Address  string
	Profile  ProfileInput
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput edits the actor's own account.
type UpdateProfileInput struct {
	Actor   identity.Actor
	Name    *string
	Phone   *string
	Address *string
	Profile ProfileInput
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken string
	User        *UserProjection
}
