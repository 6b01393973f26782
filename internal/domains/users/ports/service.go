package ports

import (
	"context"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input usertypes.RegisterInput) (*usertypes.AuthResult, error)
	Login(ctx context.Context, input usertypes.LoginInput) (*usertypes.AuthResult, error)
	Profile(ctx context.Context, actor identity.Actor) (*usertypes.UserProjection, error)
	UpdateProfile(ctx context.Context, input usertypes.UpdateProfileInput) (*usertypes.UserProjection, error)
	Get(ctx context.Context, id string) (*usertypes.UserProjection, error)
	List(ctx context.Context, actor identity.Actor) ([]*usertypes.UserProjection, error)
	Delete(ctx context.Context, actor identity.Actor, id string) error
}
