package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

func newUser(t *testing.T, id, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(id, email, "Name "+id, "secret1", identity.RoleUser)
	require.NoError(t, err)
	return user
}

func TestRepository_EmailUniqueness(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Create(context.Background(), newUser(t, "u-1", "ann@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), newUser(t, "u-2", "ann@example.com"))
	require.ErrorIs(t, err, ports.ErrEmailTaken)

	ben, err := repo.Create(context.Background(), newUser(t, "u-3", "ben@example.com"))
	require.NoError(t, err)
	ben.Entity.Email = "ann@example.com"
	_, err = repo.Update(context.Background(), ben.Entity)
	require.ErrorIs(t, err, ports.ErrEmailTaken)
}

func TestRepository_UpdateMovesEmailIndex(t *testing.T) {
	repo := NewRepository()
	created, err := repo.Create(context.Background(), newUser(t, "u-1", "ann@example.com"))
	require.NoError(t, err)

	created.Entity.Email = "ann.b@example.com"
	_, err = repo.Update(context.Background(), created.Entity)
	require.NoError(t, err)

	_, err = repo.GetByEmail(context.Background(), "ann@example.com")
	require.ErrorIs(t, err, ports.ErrNotFound)
	found, err := repo.GetByEmail(context.Background(), "ANN.B@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.Entity.ID)
}

func TestRepository_ListOrderAndDelete(t *testing.T) {
	repo := NewRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	_, err := repo.Create(context.Background(), newUser(t, "u-2", "b@example.com"))
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), newUser(t, "u-1", "a@example.com"))
	require.NoError(t, err)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u-2", list[0].Entity.ID)

	require.NoError(t, repo.Delete(context.Background(), "u-2"))
	require.ErrorIs(t, repo.Delete(context.Background(), "u-2"), ports.ErrNotFound)
	_, err = repo.GetByEmail(context.Background(), "b@example.com")
	require.ErrorIs(t, err, ports.ErrNotFound)
}
