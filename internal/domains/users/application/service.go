package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo   ports.Repository
	tokens ports.TokenIssuer
	newID  func() string
}

type Option func(*Service)

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(repo ports.Repository, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{repo: repo, tokens: tokens, newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates an account and signs the caller in. Admin accounts cannot
// be self-registered.
func (s *Service) Register(ctx context.Context, input types.RegisterInput) (*types.AuthResult, error) {
	role := identity.RoleUser
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := identity.ParseRole(input.Role)
		if err != nil {
			return nil, mapError(domain.ErrInvalidRole)
		}
		role = parsed
	}
	if role == identity.RoleAdmin {
		return nil, ErrForbidden
	}
	user, err := domain.NewUser(s.newID(), input.Email, input.Name, input.Password, role)
	if err != nil {
		return nil, mapError(err)
	}
	user.UpdateContact(input.Phone, input.Address)
	if err := user.UpdateProfile(applyProfile(user.Profile, input.Profile)); err != nil {
		return nil, mapError(err)
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return s.authenticate(created)
}

func (s *Service) Login(ctx context.Context, input types.LoginInput) (*types.AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !found.Entity.CheckPassword(input.Password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	return s.authenticate(found)
}

func (s *Service) Profile(ctx context.Context, actor identity.Actor) (*types.UserProjection, error) {
	if actor.IsZero() {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	return s.repo.GetByID(ctx, actor.UserID)
}

func (s *Service) UpdateProfile(ctx context.Context, input types.UpdateProfileInput) (*types.UserProjection, error) {
	if input.Actor.IsZero() {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	existing, err := s.repo.GetByID(ctx, input.Actor.UserID)
	if err != nil {
		return nil, err
	}
	user := existing.Entity.Clone()
	if input.Name != nil {
		if err := user.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	phone, address := user.Phone, user.Address
	if input.Phone != nil {
		phone = *input.Phone
	}
	if input.Address != nil {
		address = *input.Address
	}
	user.UpdateContact(phone, address)
	if err := user.UpdateProfile(applyProfile(user.Profile, input.Profile)); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, user)
}

func (s *Service) Get(ctx context.Context, id string) (*types.UserProjection, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every account. Admin only.
func (s *Service) List(ctx context.Context, actor identity.Actor) ([]*types.UserProjection, error) {
	if !identity.CanManageUsers(actor) {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

// Delete removes an account. Users may delete themselves; admins anyone.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) error {
	if actor.IsZero() || (actor.UserID != id && !identity.CanManageUsers(actor)) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authenticate(user *types.UserProjection) (*types.AuthResult, error) {
	if s.tokens == nil {
		return nil, errors.New("token issuer not configured")
	}
	token, err := s.tokens.Issue(user.Entity.Actor())
	if err != nil {
		return nil, err
	}
	return &types.AuthResult{AccessToken: token, User: user}, nil
}

func applyProfile(current domain.LifestyleProfile, input types.ProfileInput) domain.LifestyleProfile {
	next := current
	if input.HousingType != nil {
		next.HousingType = domain.HousingType(strings.ToLower(strings.TrimSpace(*input.HousingType)))
	}
	if input.AvailableTime != nil {
		next.AvailableTime = *input.AvailableTime
	}
	if input.Experience != nil {
		next.Experience = domain.Experience(strings.ToLower(strings.TrimSpace(*input.Experience)))
	}
	if input.HasChildren != nil {
		next.HasChildren = *input.HasChildren
	}
	if input.HasOtherPets != nil {
		next.HasOtherPets = *input.HasOtherPets
	}
	return next
}

var _ ports.Service = (*Service)(nil)
