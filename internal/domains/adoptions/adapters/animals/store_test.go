package animals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/memory"
	animaldomain "github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
)

func TestStore_TranslatesRepository(t *testing.T) {
	repo := animalmemory.NewRepository()
	ctx := context.Background()
	animal, err := animaldomain.NewAnimal("a-1", "s-1", animaldomain.Attributes{
		Name:        "Nala",
		Species:     animaldomain.SpeciesCat,
		Breed:       "Tabby",
		Age:         2,
		Size:        animaldomain.SizeSmall,
		EnergyLevel: 3,
		Description: "Shy at first",
		PhotoURLs:   []string{"https://img.example/nala.jpg"},
	})
	require.NoError(t, err)
	_, err = repo.Save(ctx, animal)
	require.NoError(t, err)

	store := NewStore(repo)
	snapshot, err := store.FindByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, adoptiondomain.AnimalAvailable, snapshot.Status)
	assert.Equal(t, "https://img.example/nala.jpg", snapshot.ImageURL)
	assert.Equal(t, "cat", snapshot.Traits().Species)

	require.NoError(t, store.UpdateStatus(ctx, "a-1", adoptiondomain.AnimalPending, adoptiondomain.AnimalAvailable))
	assert.ErrorIs(t, store.UpdateStatus(ctx, "a-1", adoptiondomain.AnimalPending, adoptiondomain.AnimalAvailable), ports.ErrAnimalStale)
	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrAnimalNotFound)

	pending, err := store.FindByStatus(ctx, adoptiondomain.AnimalPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	byShelter, err := store.FindByShelter(ctx, "s-2")
	require.NoError(t, err)
	assert.Empty(t, byShelter)
}
