//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

func setupAnimalsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("adoption_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newAnimal(t *testing.T, id, shelterID string) *domain.Animal {
	t.Helper()
	animal, err := domain.NewAnimal(id, shelterID, domain.Attributes{
		Name:        "Max",
		Species:     domain.SpeciesDog,
		Breed:       "Beagle",
		Age:         3,
		Size:        domain.SizeMedium,
		EnergyLevel: 6,
		Description: "Friendly",
		PhotoURLs:   []string{"https://img.example/max.jpg"},
	})
	require.NoError(t, err)
	return animal
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAnimalsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newAnimal(t, "a-1", "s-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, saved.Entity.Status)
	assert.Equal(t, []string{"https://img.example/max.jpg"}, saved.Entity.PhotoURLs)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Max", fetched.Entity.Name)
	assert.Equal(t, "s-1", fetched.Entity.ShelterID)
}

func TestRepository_SaveKeepsStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAnimalsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	animal := newAnimal(t, "a-1", "s-1")
	_, err := repo.Save(ctx, animal)
	require.NoError(t, err)
	require.NoError(t, repo.CompareAndSetStatus(ctx, "a-1", domain.StatusAvailable, domain.StatusPending))

	require.NoError(t, animal.Rename("Maximus"))
	updated, err := repo.Save(ctx, animal)
	require.NoError(t, err)
	assert.Equal(t, "Maximus", updated.Entity.Name)
	assert.Equal(t, domain.StatusPending, updated.Entity.Status)
}

func TestRepository_CompareAndSetStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAnimalsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	_, err := repo.Save(ctx, newAnimal(t, "a-1", "s-1"))
	require.NoError(t, err)

	require.NoError(t, repo.CompareAndSetStatus(ctx, "a-1", domain.StatusAvailable, domain.StatusPending))
	assert.ErrorIs(t, repo.CompareAndSetStatus(ctx, "a-1", domain.StatusAvailable, domain.StatusPending), ports.ErrStaleStatus)
	assert.ErrorIs(t, repo.CompareAndSetStatus(ctx, "missing", "", domain.StatusPending), ports.ErrNotFound)
}

func TestRepository_ListAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAnimalsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	for _, id := range []string{"a-1", "a-2"} {
		_, err := repo.Save(ctx, newAnimal(t, id, "s-1"))
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, newAnimal(t, "a-3", "s-2"))
	require.NoError(t, err)
	require.NoError(t, repo.CompareAndSetStatus(ctx, "a-2", "", domain.StatusAdopted))

	available, err := repo.List(ctx, ports.Filter{Statuses: []domain.Status{domain.StatusAvailable}})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	byShelter, err := repo.List(ctx, ports.Filter{ShelterID: "s-1"})
	require.NoError(t, err)
	assert.Len(t, byShelter, 2)

	require.NoError(t, repo.Delete(ctx, "a-3"))
	assert.ErrorIs(t, repo.Delete(ctx, "a-3"), ports.ErrNotFound)
}
