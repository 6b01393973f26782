package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("adoption request not found")
	// ErrStaleStatus means the stored status did not match the expected prior status.
	ErrStaleStatus = errors.New("adoption request status changed concurrently")
	// ErrDuplicatePending means the store already holds a pending request for the same user and animal.
	ErrDuplicatePending = errors.New("pending request already exists")
)

// Repository persists adoption requests. Every status change is conditioned on
// the prior status.
type Repository interface {
	// Create inserts a pending request, failing with ErrDuplicatePending when the
	// (user, animal) pair already has one.
	Create(ctx context.Context, request *domain.Request) (*projection.Projection[*domain.Request], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Request], error)
	// Transition moves a request from -> to and stores notes.
	Transition(ctx context.Context, id string, from, to domain.Status, notes string) (*projection.Projection[*domain.Request], error)
	// RejectPendingForAnimal rejects every pending request for animalID except exceptID
	// and returns the affected ids.
	RejectPendingForAnimal(ctx context.Context, animalID, exceptID, notes string) ([]string, error)
	CountPendingForAnimal(ctx context.Context, animalID string) (int, error)
	HasPending(ctx context.Context, userID, animalID string) (bool, error)
	// DeletePending removes a request that is still pending.
	DeletePending(ctx context.Context, id string) error
	// Restore re-inserts a deleted request with its original timestamps.
	Restore(ctx context.Context, snapshot *projection.Projection[*domain.Request]) error
	ListByUser(ctx context.Context, userID string) ([]*projection.Projection[*domain.Request], error)
	ListByAnimals(ctx context.Context, animalIDs []string) ([]*projection.Projection[*domain.Request], error)
	List(ctx context.Context) ([]*projection.Projection[*domain.Request], error)
}
