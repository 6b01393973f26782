package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
	"github.com/Apurer/pet-adoption-api/internal/shared/txn"
)

const defaultScorerTimeout = 3 * time.Second

const (
	entityRequest = "adoption request"
	entityAnimal  = "animal"
)

// Service implements the adoption request lifecycle: creation, shelter
// decisions, withdrawal and the cascades onto the requested animal.
type Service struct {
	repo          ports.Repository
	animals       ports.AnimalStore
	scorer        ports.CompatibilityScorer
	directory     ports.Directory
	tx            txn.Transactor
	idempotency   ports.IdempotencyStore
	logger        *slog.Logger
	scorerTimeout time.Duration
	fallbackScore float64
	newID         func() string
}

type Option func(*Service)

// WithScorer enables compatibility scoring at creation time.
func WithScorer(scorer ports.CompatibilityScorer) Option {
	return func(s *Service) { s.scorer = scorer }
}

// WithDirectory resolves requester profiles and enriches listings.
func WithDirectory(directory ports.Directory) Option {
	return func(s *Service) { s.directory = directory }
}

// WithTransactor sets the unit-of-work boundary. Defaults to an in-process lock.
func WithTransactor(tx txn.Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key replay on CreateRequest.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScorerTimeout bounds the scorer call made during creation.
func WithScorerTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.scorerTimeout = timeout
		}
	}
}

// WithFallbackScore overrides the score captured when the scorer fails.
func WithFallbackScore(score float64) Option {
	return func(s *Service) {
		if score >= 0 && score <= 100 {
			s.fallbackScore = score
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the adoptions service with its dependencies.
func NewService(repo ports.Repository, animals ports.AnimalStore, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		animals:       animals,
		tx:            txn.NewLocking(),
		logger:        slog.Default(),
		scorerTimeout: defaultScorerTimeout,
		fallbackScore: domain.DefaultFallbackScore,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateRequest files a pending request for an available animal and moves the
// animal to pending.
func (s *Service) CreateRequest(ctx context.Context, input types.CreateRequestInput) (*types.RequestView, error) {
	if input.Actor.UserID == "" {
		return nil, fmt.Errorf("%w: authenticated user required", ErrForbidden)
	}
	animalID := strings.TrimSpace(input.AnimalID)
	if animalID == "" {
		return nil, mapError(domain.ErrEmptyAnimal)
	}
	input.AnimalID = animalID

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		var err error
		if fingerprint, err = FingerprintCreateRequest(input); err != nil {
			return nil, err
		}
		replayed, err := s.replay(ctx, key, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, mapError(err)
	}
	if animal.Status != domain.AnimalAvailable {
		return nil, invalidState(entityAnimal, animalID, string(domain.AnimalAvailable), string(animal.Status))
	}
	duplicate, err := s.repo.HasPending(ctx, input.Actor.UserID, animalID)
	if err != nil {
		return nil, mapError(err)
	}
	if duplicate {
		return nil, fmt.Errorf("%w: user %s already has a pending request for animal %s", ErrDuplicateRequest, input.Actor.UserID, animalID)
	}

	// Scoring happens outside the unit so a slow scorer never holds it open.
	score := s.score(ctx, input.Actor.UserID, *animal)
	request, err := domain.NewRequest(s.newID(), input.Actor.UserID, animalID, input.Message, &score)
	if err != nil {
		return nil, mapError(err)
	}

	var created *types.RequestProjection
	err = s.runUnit(ctx, func(ctx context.Context, u *undoLog) error {
		if err := s.animals.UpdateStatus(ctx, animalID, domain.AnimalPending, domain.AnimalAvailable); err != nil {
			return s.animalError(ctx, err, animalID, domain.AnimalAvailable)
		}
		u.add(func(ctx context.Context) error {
			return s.animals.UpdateStatus(ctx, animalID, domain.AnimalAvailable, domain.AnimalPending)
		})

		saved, err := s.repo.Create(ctx, request)
		if err != nil {
			return mapError(err)
		}
		u.add(func(ctx context.Context) error { return s.repo.DeletePending(ctx, saved.Entity.ID) })

		if fingerprint != "" {
			if _, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
				Key:         key,
				RequestHash: fingerprint,
				RequestID:   saved.Entity.ID,
			}); err != nil {
				return err
			}
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newEnricher(s).view(ctx, created), nil
}

// UpdateStatus applies a shelter decision and its cascades.
func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*types.RequestView, error) {
	if !input.Status.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	var decided *types.RequestProjection
	err := s.runUnit(ctx, func(ctx context.Context, u *undoLog) error {
		current, err := s.repo.GetByID(ctx, input.RequestID)
		if err != nil {
			return mapError(err)
		}
		request := current.Entity
		animal, err := s.animals.FindByID(ctx, request.AnimalID)
		if err != nil {
			return mapError(err)
		}
		if !identity.CanDecide(input.Actor, animal.ShelterID) {
			return fmt.Errorf("%w: only the owning shelter or an admin may decide request %s", ErrForbidden, request.ID)
		}
		if err := domain.CanTransition(request.Status, input.Status); err != nil {
			return invalidState(entityRequest, request.ID, string(domain.StatusPending), string(request.Status))
		}
		if input.Status.Finalizes() && animal.Status == domain.AnimalAdopted {
			return invalidState(entityAnimal, animal.ID, string(domain.AnimalPending), string(animal.Status))
		}

		updated, err := s.repo.Transition(ctx, request.ID, request.Status, input.Status, input.ShelterNotes)
		if err != nil {
			return s.requestError(ctx, err, request.ID, request.Status)
		}
		prior := request.Clone()
		u.add(func(ctx context.Context) error {
			_, err := s.repo.Transition(ctx, prior.ID, input.Status, prior.Status, prior.ShelterNotes)
			return err
		})

		switch {
		case input.Status.Finalizes():
			if err := s.adopt(ctx, u, updated.Entity); err != nil {
				return err
			}
		case input.Status == domain.StatusRejected:
			if err := s.releaseIfIdle(ctx, u, request.AnimalID); err != nil {
				return err
			}
		}
		decided = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	fresh, err := s.repo.GetByID(ctx, decided.Entity.ID)
	if err != nil {
		fresh = decided
	}
	return newEnricher(s).view(ctx, fresh), nil
}

// RemoveRequest lets the requester withdraw a pending request.
func (s *Service) RemoveRequest(ctx context.Context, input types.RemoveRequestInput) error {
	return s.runUnit(ctx, func(ctx context.Context, u *undoLog) error {
		current, err := s.repo.GetByID(ctx, input.RequestID)
		if err != nil {
			return mapError(err)
		}
		request := current.Entity
		if input.Actor.UserID == "" || request.UserID != input.Actor.UserID {
			return fmt.Errorf("%w: only the requester may delete request %s", ErrForbidden, request.ID)
		}
		if request.Status != domain.StatusPending {
			return invalidState(entityRequest, request.ID, string(domain.StatusPending), string(request.Status))
		}
		if err := s.repo.DeletePending(ctx, request.ID); err != nil {
			return s.requestError(ctx, err, request.ID, domain.StatusPending)
		}
		removed := projection.New(request.Clone(), current.Metadata.CreatedAt, current.Metadata.UpdatedAt)
		u.add(func(ctx context.Context) error {
			return s.repo.Restore(ctx, removed)
		})
		return s.releaseIfIdle(ctx, u, request.AnimalID)
	})
}

// adopt marks the animal adopted and rejects every competing pending request.
func (s *Service) adopt(ctx context.Context, u *undoLog, request *domain.Request) error {
	animal, err := s.animals.FindByID(ctx, request.AnimalID)
	if err != nil {
		return mapError(err)
	}
	if animal.Status == domain.AnimalAdopted {
		return conflict(entityAnimal, animal.ID, string(domain.AnimalPending), string(animal.Status))
	}
	prior := animal.Status
	if err := s.animals.UpdateStatus(ctx, animal.ID, domain.AnimalAdopted, prior); err != nil {
		return s.animalError(ctx, err, animal.ID, prior)
	}
	u.add(func(ctx context.Context) error {
		return s.animals.UpdateStatus(ctx, animal.ID, prior, domain.AnimalAdopted)
	})

	rejected, err := s.repo.RejectPendingForAnimal(ctx, animal.ID, request.ID, domain.AdoptedElsewhereNote)
	if err != nil {
		return mapError(err)
	}
	u.add(func(ctx context.Context) error {
		var errs []error
		for _, id := range rejected {
			if _, err := s.repo.Transition(ctx, id, domain.StatusRejected, domain.StatusPending, ""); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	if len(rejected) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "competing adoption requests rejected",
			slog.String("animal.id", animal.ID),
			slog.Int("rejected", len(rejected)))
	}
	return nil
}

// releaseIfIdle returns a pending animal to available once no pending request
// remains. An animal that already left pending is left alone.
func (s *Service) releaseIfIdle(ctx context.Context, u *undoLog, animalID string) error {
	remaining, err := s.repo.CountPendingForAnimal(ctx, animalID)
	if err != nil {
		return mapError(err)
	}
	if remaining > 0 {
		return nil
	}
	err = s.animals.UpdateStatus(ctx, animalID, domain.AnimalAvailable, domain.AnimalPending)
	switch {
	case err == nil:
		u.add(func(ctx context.Context) error {
			return s.animals.UpdateStatus(ctx, animalID, domain.AnimalPending, domain.AnimalAvailable)
		})
		return nil
	case errors.Is(err, ports.ErrAnimalStale), errors.Is(err, ports.ErrAnimalNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) animalError(ctx context.Context, err error, animalID string, expected domain.AnimalStatus) error {
	if !errors.Is(err, ports.ErrAnimalStale) {
		return mapError(err)
	}
	actual := "unknown"
	if current, findErr := s.animals.FindByID(ctx, animalID); findErr == nil {
		actual = string(current.Status)
	}
	return conflict(entityAnimal, animalID, string(expected), actual)
}

func (s *Service) requestError(ctx context.Context, err error, requestID string, expected domain.Status) error {
	if !errors.Is(err, ports.ErrStaleStatus) {
		return mapError(err)
	}
	actual := "unknown"
	if current, getErr := s.repo.GetByID(ctx, requestID); getErr == nil {
		actual = string(current.Entity.Status)
	}
	return conflict(entityRequest, requestID, string(expected), actual)
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*types.RequestView, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != fingerprint {
		return nil, fmt.Errorf("%w: key %q was used with a different payload", ErrIdempotencyConflict, key)
	}
	stored, err := s.repo.GetByID(ctx, record.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "replaying idempotent adoption request",
		slog.String("request.id", stored.Entity.ID))
	return newEnricher(s).view(ctx, stored), nil
}

var _ ports.Service = (*Service)(nil)
