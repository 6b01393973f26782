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

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

func setupAdoptionsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func pendingRequest(t *testing.T, id, userID, animalID string) *domain.Request {
	t.Helper()
	score := 80.0
	req, err := domain.NewRequest(id, userID, animalID, "", &score)
	require.NoError(t, err)
	return req
}

func TestRepository_PartialUniqueIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAdoptionsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, pendingRequest(t, "r-1", "u-1", "a-1"))
	require.NoError(t, err)
	assert.Equal(t, "", created.Entity.Message)

	_, err = repo.Create(ctx, pendingRequest(t, "r-2", "u-1", "a-1"))
	assert.ErrorIs(t, err, ports.ErrDuplicatePending)

	_, err = repo.Transition(ctx, "r-1", domain.StatusPending, domain.StatusRejected, "no")
	require.NoError(t, err)
	_, err = repo.Create(ctx, pendingRequest(t, "r-3", "u-1", "a-1"))
	assert.NoError(t, err, "a rejected request frees the pair")
}

func TestRepository_TransitionAndCascade(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAdoptionsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	tx := platformpostgres.NewTransactor(db)
	ctx := context.Background()
	for _, req := range []*domain.Request{
		pendingRequest(t, "r-1", "u-1", "a-1"),
		pendingRequest(t, "r-2", "u-2", "a-1"),
		pendingRequest(t, "r-3", "u-3", "a-1"),
	} {
		_, err := repo.Create(ctx, req)
		require.NoError(t, err)
	}

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Transition(ctx, "r-1", domain.StatusPending, domain.StatusApproved, "welcome"); err != nil {
			return err
		}
		_, err := repo.RejectPendingForAnimal(ctx, "a-1", "r-1", domain.AdoptedElsewhereNote)
		return err
	})
	require.NoError(t, err)

	count, err := repo.CountPendingForAnimal(ctx, "a-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	loser, err := repo.GetByID(ctx, "r-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, loser.Entity.Status)
	assert.Equal(t, domain.AdoptedElsewhereNote, loser.Entity.ShelterNotes)

	_, err = repo.Transition(ctx, "r-1", domain.StatusPending, domain.StatusRejected, "")
	assert.ErrorIs(t, err, ports.ErrStaleStatus)
}

func TestRepository_RollbackLeavesNoWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAdoptionsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	tx := platformpostgres.NewTransactor(db)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, pendingRequest(t, "r-1", "u-1", "a-1")); err != nil {
			return err
		}
		_, err := repo.Create(ctx, pendingRequest(t, "r-2", "u-1", "a-1"))
		return err
	})
	require.ErrorIs(t, err, ports.ErrDuplicatePending)

	_, err = repo.GetByID(ctx, "r-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestIdempotencyStore_SaveInsideTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupAdoptionsPostgresContainer(t)
	defer cleanup()

	store := NewIdempotencyStore(db)
	tx := platformpostgres.NewTransactor(db)
	ctx := context.Background()

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", RequestID: "r-1"})
	require.NoError(t, err)

	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "other", RequestID: "r-2"})
		assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
		assert.Equal(t, "r-1", existing.RequestID)
		again, err := store.Get(ctx, "k-1")
		require.NoError(t, err)
		assert.Equal(t, "h", again.RequestHash)
		return nil
	})
	require.NoError(t, err)
}
