package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptionanimals "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/animals"
	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/memory"
	animaldomain "github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
	"github.com/Apurer/pet-adoption-api/internal/shared/txn"
)

var (
	shelterActor = identity.Actor{UserID: "shelter-1", Role: identity.RoleShelter}
	otherShelter = identity.Actor{UserID: "shelter-2", Role: identity.RoleShelter}
	adminActor   = identity.Actor{UserID: "admin-1", Role: identity.RoleAdmin}
	u1           = identity.Actor{UserID: "user-1", Role: identity.RoleUser}
	u2           = identity.Actor{UserID: "user-2", Role: identity.RoleUser}
)

type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (f *fakeScorer) Score(_ context.Context, _ matching.Profile, traits matching.Traits) (matching.Match, error) {
	f.calls++
	if f.err != nil {
		return matching.Match{}, f.err
	}
	return matching.Match{AnimalID: traits.AnimalID, Score: f.score}, nil
}

type fakeDirectory map[string]*ports.Party

func (d fakeDirectory) Lookup(_ context.Context, id string) (*ports.Party, error) {
	party, ok := d[id]
	if !ok {
		return nil, ports.ErrPartyNotFound
	}
	return party, nil
}

func directory() fakeDirectory {
	return fakeDirectory{
		"shelter-1": {ID: "shelter-1", Name: "Happy Paws", Email: "paws@example.com", Role: identity.RoleShelter},
		"user-1":    {ID: "user-1", Name: "Ann", Email: "ann@example.com", Role: identity.RoleUser, Profile: matching.Profile{HousingType: "house_large", AvailableTime: 6}},
		"user-2":    {ID: "user-2", Name: "Ben", Email: "ben@example.com", Role: identity.RoleUser},
	}
}

type fixture struct {
	svc      *Service
	requests *adoptionmemory.Repository
	animals  *animalmemory.Repository
	store    ports.AnimalStore
	scorer   *fakeScorer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		requests: adoptionmemory.NewRepository(),
		animals:  animalmemory.NewRepository(),
		scorer:   &fakeScorer{score: 82},
	}
	tick := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.requests.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	f.store = adoptionanimals.NewStore(f.animals)
	base := []Option{WithScorer(f.scorer), WithDirectory(directory())}
	f.svc = NewService(f.requests, f.store, append(base, opts...)...)
	return f
}

func (f *fixture) addAnimal(t *testing.T, id string, status animaldomain.Status) {
	t.Helper()
	animal, err := animaldomain.NewAnimal(id, "shelter-1", animaldomain.Attributes{
		Name:        "Animal " + id,
		Species:     animaldomain.SpeciesDog,
		Breed:       "Mixed",
		Age:         3,
		Size:        animaldomain.SizeMedium,
		EnergyLevel: 5,
		Description: "Good dog",
	})
	require.NoError(t, err)
	_, err = f.animals.Save(context.Background(), animal)
	require.NoError(t, err)
	if status != animaldomain.StatusAvailable {
		require.NoError(t, f.animals.CompareAndSetStatus(context.Background(), id, "", status))
	}
}

func (f *fixture) seedPending(t *testing.T, id, userID, animalID string) {
	t.Helper()
	req, err := domain.NewRequest(id, userID, animalID, "", nil)
	require.NoError(t, err)
	_, err = f.requests.Create(context.Background(), req)
	require.NoError(t, err)
}

func (f *fixture) animalStatus(t *testing.T, id string) animaldomain.Status {
	t.Helper()
	stored, err := f.animals.GetByID(context.Background(), id)
	require.NoError(t, err)
	return stored.Entity.Status
}

func (f *fixture) requestOf(t *testing.T, id string) *domain.Request {
	t.Helper()
	stored, err := f.requests.GetByID(context.Background(), id)
	require.NoError(t, err)
	return stored.Entity
}

func TestScenario_CreateThenApprove(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "x", animaldomain.StatusAvailable)
	ctx := context.Background()

	created, err := f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Request.Status)
	require.NotNil(t, created.Request.CompatibilityScore)
	assert.Equal(t, 82.0, *created.Request.CompatibilityScore)
	assert.Equal(t, "", created.Request.Message)
	assert.Equal(t, "", created.Request.ShelterNotes)
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "x"))
	require.NotNil(t, created.Shelter)
	assert.Equal(t, "Happy Paws", created.Shelter.Name)

	_, err = f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u2, AnimalID: "x"})
	require.ErrorIs(t, err, ErrInvalidState)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "available", stateErr.Expected)
	assert.Equal(t, "pending", stateErr.Actual)

	approved, err := f.svc.UpdateStatus(ctx, types.UpdateStatusInput{
		Actor:     shelterActor,
		RequestID: created.Request.ID,
		Status:    domain.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Request.Status)
	assert.Equal(t, "", approved.Request.ShelterNotes)
	assert.Equal(t, animaldomain.StatusAdopted, f.animalStatus(t, "x"))
	require.NotNil(t, approved.Animal)
	assert.Equal(t, domain.AnimalAdopted, approved.Animal.Status)
}

func TestScenario_ScorerDownUsesFallback(t *testing.T) {
	f := newFixture(t)
	f.scorer.err = errors.New("connection refused")
	f.addAnimal(t, "y", animaldomain.StatusAvailable)
	ctx := context.Background()

	first, err := f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "y", Message: "please"})
	require.NoError(t, err)
	assert.Equal(t, 75.0, *first.Request.CompatibilityScore)
	assert.Equal(t, "please", first.Request.Message)

	_, err = f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u2, AnimalID: "y"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateRequest_FallbackWhenProfileMissing(t *testing.T) {
	f := newFixture(t, WithDirectory(fakeDirectory{}), WithFallbackScore(60))
	f.addAnimal(t, "a-1", animaldomain.StatusAvailable)

	created, err := f.svc.CreateRequest(context.Background(), types.CreateRequestInput{Actor: u1, AnimalID: "a-1"})
	require.NoError(t, err)
	assert.Equal(t, 60.0, *created.Request.CompatibilityScore)
	assert.Zero(t, f.scorer.calls)
}

func TestCreateRequest_Failures(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "adopted", animaldomain.StatusAdopted)
	f.addAnimal(t, "free", animaldomain.StatusAvailable)
	f.seedPending(t, "legacy", "user-1", "free")
	ctx := context.Background()

	_, err := f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "adopted"})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "free"})
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	_, err = f.svc.CreateRequest(ctx, types.CreateRequestInput{AnimalID: "free"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// racingStore flips the animal out of available right before the first
// compare-and-set, as a concurrent request would.
type racingStore struct {
	ports.AnimalStore
	repo  *animalmemory.Repository
	raced bool
}

func (r *racingStore) UpdateStatus(ctx context.Context, id string, status, expected domain.AnimalStatus) error {
	if !r.raced {
		r.raced = true
		if err := r.repo.CompareAndSetStatus(ctx, id, "", animaldomain.StatusPending); err != nil {
			return err
		}
	}
	return r.AnimalStore.UpdateStatus(ctx, id, status, expected)
}

func TestCreateRequest_ConcurrentStatusChangeIsConflict(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusAvailable)
	svc := NewService(f.requests, &racingStore{AnimalStore: f.store, repo: f.animals}, WithDirectory(directory()))

	_, err := svc.CreateRequest(context.Background(), types.CreateRequestInput{Actor: u1, AnimalID: "a-1"})
	require.ErrorIs(t, err, ErrConflict)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "pending", stateErr.Actual)

	all, err := f.requests.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

// failingRepository refuses to create requests.
type failingRepository struct {
	ports.Repository
}

func (failingRepository) Create(context.Context, *domain.Request) (*types.RequestProjection, error) {
	return nil, errors.New("disk full")
}

func TestCreateRequest_CompensatesWithoutRollback(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusAvailable)
	svc := NewService(failingRepository{Repository: f.requests}, f.store, WithTransactor(txn.Noop{}))

	_, err := svc.CreateRequest(context.Background(), types.CreateRequestInput{Actor: u1, AnimalID: "a-1"})
	require.Error(t, err)
	assert.Equal(t, animaldomain.StatusAvailable, f.animalStatus(t, "a-1"))
}

func TestCreateRequest_Idempotent(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(adoptionmemory.NewIdempotencyStore()))
	f.addAnimal(t, "a-1", animaldomain.StatusAvailable)
	ctx := context.Background()
	input := types.CreateRequestInput{Actor: u1, AnimalID: "a-1", Message: "hi", IdempotencyKey: "key-1"}

	first, err := f.svc.CreateRequest(ctx, input)
	require.NoError(t, err)
	replayed, err := f.svc.CreateRequest(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.Request.ID, replayed.Request.ID)
	assert.Equal(t, 1, f.scorer.calls)

	input.Message = "changed"
	_, err = f.svc.CreateRequest(ctx, input)
	assert.ErrorIs(t, err, ErrIdempotencyConflict)
}

func TestUpdateStatus_ApproveRejectsCompetitors(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	f.seedPending(t, "r-2", "user-2", "a-1")
	f.seedPending(t, "r-3", "user-3", "a-1")

	_, err := f.svc.UpdateStatus(context.Background(), types.UpdateStatusInput{
		Actor:        shelterActor,
		RequestID:    "r-2",
		Status:       domain.StatusCompleted,
		ShelterNotes: "Picked up Saturday",
	})
	require.NoError(t, err)

	assert.Equal(t, animaldomain.StatusAdopted, f.animalStatus(t, "a-1"))
	winner := f.requestOf(t, "r-2")
	assert.Equal(t, domain.StatusCompleted, winner.Status)
	assert.Equal(t, "Picked up Saturday", winner.ShelterNotes)
	for _, id := range []string{"r-1", "r-3"} {
		loser := f.requestOf(t, id)
		assert.Equal(t, domain.StatusRejected, loser.Status)
		assert.Equal(t, domain.AdoptedElsewhereNote, loser.ShelterNotes)
	}
}

func TestUpdateStatus_RejectReleasesOnlyLastPending(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	f.seedPending(t, "r-2", "user-2", "a-1")
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: shelterActor, RequestID: "r-1", Status: domain.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "a-1"))

	rejected, err := f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: adminActor, RequestID: "r-2", Status: domain.StatusRejected, ShelterNotes: "sorry"})
	require.NoError(t, err)
	assert.Equal(t, "sorry", rejected.Request.ShelterNotes)
	assert.Equal(t, animaldomain.StatusAvailable, f.animalStatus(t, "a-1"))
}

func TestUpdateStatus_PendingToPendingUpdatesNotes(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")

	view, err := f.svc.UpdateStatus(context.Background(), types.UpdateStatusInput{
		Actor: shelterActor, RequestID: "r-1", Status: domain.StatusPending, ShelterNotes: "home visit booked",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, view.Request.Status)
	assert.Equal(t, "home visit booked", view.Request.ShelterNotes)
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "a-1"))
}

func TestUpdateStatus_Guards(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: shelterActor, RequestID: "missing", Status: domain.StatusApproved})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: otherShelter, RequestID: "r-1", Status: domain.StatusApproved})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: u1, RequestID: "r-1", Status: domain.StatusApproved})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: shelterActor, RequestID: "r-1", Status: domain.Status("cancelled")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: shelterActor, RequestID: "r-1", Status: domain.StatusRejected})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: shelterActor, RequestID: "r-1", Status: domain.StatusApproved})
	require.ErrorIs(t, err, ErrInvalidState)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "rejected", stateErr.Actual)
	assert.Equal(t, "r-1", stateErr.ID)
}

func TestUpdateStatus_ApproveOnAdoptedAnimalIsInvalid(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusAdopted)
	f.seedPending(t, "r-1", "user-1", "a-1")

	_, err := f.svc.UpdateStatus(context.Background(), types.UpdateStatusInput{Actor: shelterActor, RequestID: "r-1", Status: domain.StatusApproved})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, domain.StatusPending, f.requestOf(t, "r-1").Status)
}

func TestRemoveRequest(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusAvailable)
	ctx := context.Background()
	created, err := f.svc.CreateRequest(ctx, types.CreateRequestInput{Actor: u1, AnimalID: "a-1"})
	require.NoError(t, err)

	err = f.svc.RemoveRequest(ctx, types.RemoveRequestInput{Actor: u2, RequestID: created.Request.ID})
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.svc.RemoveRequest(ctx, types.RemoveRequestInput{Actor: adminActor, RequestID: created.Request.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.RemoveRequest(ctx, types.RemoveRequestInput{Actor: u1, RequestID: created.Request.ID}))
	assert.Equal(t, animaldomain.StatusAvailable, f.animalStatus(t, "a-1"))

	err = f.svc.RemoveRequest(ctx, types.RemoveRequestInput{Actor: u1, RequestID: created.Request.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveRequest_KeepsAnimalPendingWhileOthersWait(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	f.seedPending(t, "r-2", "user-2", "a-1")

	require.NoError(t, f.svc.RemoveRequest(context.Background(), types.RemoveRequestInput{Actor: u1, RequestID: "r-1"}))
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "a-1"))
}

// countFailingRepository breaks the pending count that follows a delete.
type countFailingRepository struct {
	ports.Repository
}

func (countFailingRepository) CountPendingForAnimal(context.Context, string) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRemoveRequest_UndoRestoresOriginalTimestamps(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	ctx := context.Background()
	before, err := f.requests.GetByID(ctx, "r-1")
	require.NoError(t, err)

	svc := NewService(countFailingRepository{Repository: f.requests}, f.store, WithTransactor(txn.Noop{}))
	err = svc.RemoveRequest(ctx, types.RemoveRequestInput{Actor: u1, RequestID: "r-1"})
	require.Error(t, err)

	after, err := f.requests.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, after.Entity.Status)
	assert.True(t, before.Metadata.CreatedAt.Equal(after.Metadata.CreatedAt))
	assert.True(t, before.Metadata.UpdatedAt.Equal(after.Metadata.UpdatedAt))
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "a-1"))
}

func TestRemoveRequest_OnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	ctx := context.Background()
	_, err := f.svc.UpdateStatus(ctx, types.UpdateStatusInput{Actor: shelterActor, RequestID: "r-1", Status: domain.StatusApproved})
	require.NoError(t, err)

	err = f.svc.RemoveRequest(ctx, types.RemoveRequestInput{Actor: u1, RequestID: "r-1"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.addAnimal(t, "a-2", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	f.seedPending(t, "r-2", "user-2", "a-2")
	f.seedPending(t, "r-3", "user-1", "a-2")
	ctx := context.Background()

	mine, err := f.svc.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "r-3", mine[0].Request.ID)
	assert.Equal(t, "r-1", mine[1].Request.ID)
	require.NotNil(t, mine[0].Animal)
	assert.Equal(t, "Animal a-2", mine[0].Animal.Name)
	assert.Equal(t, "Happy Paws", mine[0].Shelter.Name)

	shelterViews, err := f.svc.ListForShelter(ctx, types.ListForShelterInput{Actor: shelterActor, ShelterID: "shelter-1"})
	require.NoError(t, err)
	require.Len(t, shelterViews, 3)
	assert.Equal(t, "r-3", shelterViews[0].Request.ID)
	assert.Equal(t, "Ann", shelterViews[0].Requester.Name)

	_, err = f.svc.ListForShelter(ctx, types.ListForShelterInput{Actor: otherShelter, ShelterID: "shelter-1"})
	assert.ErrorIs(t, err, ErrForbidden)

	empty, err := f.svc.ListForShelter(ctx, types.ListForShelterInput{Actor: otherShelter, ShelterID: "shelter-2"})
	require.NoError(t, err)
	assert.Empty(t, empty)

	scoped, err := f.svc.ListForActor(ctx, u2)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "r-2", scoped[0].Request.ID)

	all, err := f.svc.ListForActor(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListForActor(ctx, identity.Actor{UserID: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "a-1", animaldomain.StatusPending)
	f.seedPending(t, "r-1", "user-1", "a-1")
	ctx := context.Background()

	for _, actor := range []identity.Actor{u1, shelterActor, adminActor} {
		view, err := f.svc.Get(ctx, types.GetRequestInput{Actor: actor, RequestID: "r-1"})
		require.NoError(t, err)
		assert.Equal(t, "r-1", view.Request.ID)
	}
	_, err := f.svc.Get(ctx, types.GetRequestInput{Actor: u2, RequestID: "r-1"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, types.GetRequestInput{Actor: u1, RequestID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "stuck", animaldomain.StatusPending)
	f.addAnimal(t, "waiting", animaldomain.StatusPending)
	f.addAnimal(t, "decided", animaldomain.StatusPending)
	f.addAnimal(t, "free", animaldomain.StatusAvailable)
	f.seedPending(t, "r-1", "user-1", "waiting")
	f.seedPending(t, "r-2", "user-1", "decided")
	_, err := f.requests.Transition(context.Background(), "r-2", domain.StatusPending, domain.StatusApproved, "")
	require.NoError(t, err)

	report, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stuck"}, report.Released)
	assert.Equal(t, []string{"decided"}, report.Adopted)
	assert.Equal(t, animaldomain.StatusAvailable, f.animalStatus(t, "stuck"))
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "waiting"))
	assert.Equal(t, animaldomain.StatusAdopted, f.animalStatus(t, "decided"))
	assert.Equal(t, animaldomain.StatusAvailable, f.animalStatus(t, "free"))
	assert.Empty(t, report.Held)
}

func TestReconcile_HoldsAvailableAnimalWithPendingRequest(t *testing.T) {
	f := newFixture(t)
	f.addAnimal(t, "drifted", animaldomain.StatusAvailable)
	f.seedPending(t, "r-1", "user-1", "drifted")

	report, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"drifted"}, report.Held)
	assert.Empty(t, report.Released)
	assert.Empty(t, report.Adopted)
	assert.Equal(t, animaldomain.StatusPending, f.animalStatus(t, "drifted"))

	again, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, again.Held)
}

func TestErrorCodesRoundTrip(t *testing.T) {
	err := invalidState(entityAnimal, "a-1", "available", "adopted")
	code := ErrorCode(err)
	assert.Equal(t, CodeInvalidState, code)
	assert.Equal(t, ErrInvalidState, ErrorFromCode(code))
	assert.Equal(t, "", ErrorCode(errors.New("boom")))
	assert.Nil(t, ErrorFromCode("UNKNOWN"))
}
