package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

func TestDirectory_LookupAndProfile(t *testing.T) {
	repo := memory.NewRepository()
	user, err := domain.NewUser("u-1", "ann@example.com", "Ann", "secret1", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, user.UpdateProfile(domain.LifestyleProfile{
		HousingType:   domain.HousingApartment,
		AvailableTime: 3,
		Experience:    domain.ExperienceSome,
		HasOtherPets:  true,
	}))
	_, err = repo.Create(context.Background(), user)
	require.NoError(t, err)

	dir := New(repo)
	party, err := dir.Lookup(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", party.Name)
	assert.Equal(t, identity.RoleUser, party.Role)
	assert.Equal(t, "apartment", party.Profile.HousingType)

	profile, err := dir.Profile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, matching.Profile{HousingType: "apartment", AvailableTime: 3, Experience: "some", HasOtherPets: true}, profile)

	_, err = dir.Lookup(context.Background(), "missing")
	require.ErrorIs(t, err, adoptionports.ErrPartyNotFound)
	_, err = dir.Profile(context.Background(), "missing")
	require.ErrorIs(t, err, matching.ErrProfileNotFound)
}
