package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Repository interface {
	// Create inserts a new account, failing with ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error)
	// Update replaces an existing account.
	Update(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.User], error)
	GetByEmail(ctx context.Context, email string) (*projection.Projection[*domain.User], error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*projection.Projection[*domain.User], error)
}
