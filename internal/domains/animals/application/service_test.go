package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	animalmemory "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/memory"
	animaltypes "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

var (
	shelter = identity.Actor{UserID: "shelter-1", Role: identity.RoleShelter}
	adopter = identity.Actor{UserID: "user-1", Role: identity.RoleUser}
)

type fakeScorer struct {
	scores map[string]float64
	err    error
}

func (f *fakeScorer) Score(_ context.Context, _ matching.Profile, traits matching.Traits) (matching.Match, error) {
	if f.err != nil {
		return matching.Match{}, f.err
	}
	return matching.Match{AnimalID: traits.AnimalID, Score: f.scores[traits.AnimalID]}, nil
}

func (f *fakeScorer) ScoreBatch(ctx context.Context, profile matching.Profile, traits []matching.Traits) ([]matching.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]matching.Match, 0, len(traits))
	for _, t := range traits {
		match, _ := f.Score(ctx, profile, t)
		out = append(out, match)
	}
	return out, nil
}

type fakeProfiles struct{}

func (fakeProfiles) Profile(context.Context, string) (matching.Profile, error) {
	return matching.Profile{HousingType: "house_large", AvailableTime: 6, Experience: "some"}, nil
}

func createInput(name string) animaltypes.CreateAnimalInput {
	return animaltypes.CreateAnimalInput{
		Actor:       shelter,
		Name:        name,
		Species:     "dog",
		Breed:       "Labrador",
		Age:         4,
		Size:        "large",
		EnergyLevel: 7,
		Description: "Loves fetch",
	}
}

func TestCreate_AssignsShelterAndDefaults(t *testing.T) {
	svc := NewService(animalmemory.NewRepository())

	created, err := svc.Create(context.Background(), createInput("Rocky"))
	require.NoError(t, err)
	require.NotEmpty(t, created.Entity.ID)
	require.Equal(t, "shelter-1", created.Entity.ShelterID)
	require.Equal(t, domain.StatusAvailable, created.Entity.Status)
	require.True(t, created.Entity.GoodWithChildren)
	require.True(t, created.Entity.GoodWithPets)
}

func TestCreate_RequiresShelterRole(t *testing.T) {
	svc := NewService(animalmemory.NewRepository())
	input := createInput("Rocky")
	input.Actor = adopter

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := NewService(animalmemory.NewRepository())
	input := createInput("Rocky")
	input.Age = 40

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidAge)
}

func TestUpdate_OnlyOwnerOrAdmin(t *testing.T) {
	svc := NewService(animalmemory.NewRepository())
	created, err := svc.Create(context.Background(), createInput("Rocky"))
	require.NoError(t, err)

	name := "Rocky II"
	_, err = svc.Update(context.Background(), animaltypes.UpdateAnimalInput{
		Actor: identity.Actor{UserID: "shelter-2", Role: identity.RoleShelter},
		ID:    created.Entity.ID,
		Name:  &name,
	})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(context.Background(), animaltypes.UpdateAnimalInput{
		Actor: identity.Actor{UserID: "admin-1", Role: identity.RoleAdmin},
		ID:    created.Entity.ID,
		Name:  &name,
	})
	require.NoError(t, err)
	require.Equal(t, name, updated.Entity.Name)
}

func TestList_DefaultsToAvailable(t *testing.T) {
	repo := animalmemory.NewRepository()
	svc := NewService(repo)
	first, err := svc.Create(context.Background(), createInput("Max"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createInput("Bella"))
	require.NoError(t, err)
	require.NoError(t, repo.CompareAndSetStatus(context.Background(), first.Entity.ID, domain.StatusAvailable, domain.StatusAdopted))

	available, err := svc.List(context.Background(), animaltypes.ListAnimalsInput{})
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "Bella", available[0].Entity.Name)

	adopted := "adopted"
	result, err := svc.List(context.Background(), animaltypes.ListAnimalsInput{Status: &adopted})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "Max", result[0].Entity.Name)
}

func TestDelete_MissingAnimal(t *testing.T) {
	svc := NewService(animalmemory.NewRepository())
	err := svc.Delete(context.Background(), animaltypes.DeleteAnimalInput{Actor: shelter, ID: "missing"})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCompatibility_FallsBackWhenScorerFails(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("connection refused")}
	svc := NewService(animalmemory.NewRepository(), WithScorer(scorer, fakeProfiles{}))
	created, err := svc.Create(context.Background(), createInput("Max"))
	require.NoError(t, err)

	result, err := svc.Compatibility(context.Background(), animaltypes.CompatibilityInput{Actor: adopter, AnimalID: created.Entity.ID})
	require.NoError(t, err)
	require.Equal(t, matching.FallbackScore, result.Score)
	require.Equal(t, matching.FallbackRecommendation, result.Recommendation)
	require.True(t, result.Estimated)
}

func TestRecommendations_SortedByScore(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{}}
	ids := []string{"a-low", "a-high", "a-mid"}
	next := 0
	svc := NewService(animalmemory.NewRepository(),
		WithScorer(scorer, fakeProfiles{}),
		WithIDGenerator(func() string { id := ids[next]; next++; return id }),
	)
	for _, name := range []string{"Low", "High", "Mid"} {
		_, err := svc.Create(context.Background(), createInput(name))
		require.NoError(t, err)
	}
	scorer.scores["a-low"] = 30
	scorer.scores["a-high"] = 91
	scorer.scores["a-mid"] = 66

	result, err := svc.Recommendations(context.Background(), animaltypes.RecommendationsInput{Actor: adopter})
	require.NoError(t, err)
	require.Len(t, result, 3)
	require.Equal(t, "a-high", result[0].Animal.Entity.ID)
	require.Equal(t, "excellent", result[0].Compatibility.Recommendation)
	require.Equal(t, "a-mid", result[1].Animal.Entity.ID)
	require.Equal(t, "a-low", result[2].Animal.Entity.ID)
}
