package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

const defaultScorerTimeout = 3 * time.Second

// Service orchestrates the animals bounded context use cases.
type Service struct {
	repo          ports.Repository
	scorer        matching.Scorer
	profiles      matching.ProfileSource
	scorerTimeout time.Duration
	logger        *slog.Logger
	newID         func() string
}

type Option func(*Service)

// WithScorer enables compatibility scoring.
func WithScorer(scorer matching.Scorer, profiles matching.ProfileSource) Option {
	return func(s *Service) {
		s.scorer = scorer
		s.profiles = profiles
	}
}

// WithScorerTimeout bounds every scorer call.
func WithScorerTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.scorerTimeout = timeout
		}
	}
}

// WithLogger records scorer degradations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the animals service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		scorerTimeout: defaultScorerTimeout,
		logger:        slog.Default(),
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create lists a new animal owned by the acting shelter.
func (s *Service) Create(ctx context.Context, input types.CreateAnimalInput) (*types.AnimalProjection, error) {
	if !identity.CanCreateAnimal(input.Actor) {
		return nil, ErrForbidden
	}
	attrs := domain.Attributes{
		Name:             input.Name,
		Species:          domain.Species(input.Species),
		Breed:            input.Breed,
		Age:              input.Age,
		Size:             domain.Size(input.Size),
		EnergyLevel:      input.EnergyLevel,
		GoodWithChildren: boolOrDefault(input.GoodWithChildren, true),
		GoodWithPets:     boolOrDefault(input.GoodWithPets, true),
		Description:      input.Description,
		PhotoURLs:        input.PhotoURLs,
	}
	animal, err := domain.NewAnimal(s.newID(), input.Actor.UserID, attrs)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, animal)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Get loads a single animal.
func (s *Service) Get(ctx context.Context, id string) (*types.AnimalProjection, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// List returns animals matching the filter, defaulting to available ones.
func (s *Service) List(ctx context.Context, input types.ListAnimalsInput) ([]*types.AnimalProjection, error) {
	filter := ports.Filter{
		GoodWithChildren: input.GoodWithChildren,
		GoodWithPets:     input.GoodWithPets,
		Statuses:         []domain.Status{domain.StatusAvailable},
	}
	if input.Species != nil && *input.Species != "" {
		species := domain.Species(strings.ToLower(*input.Species))
		if !species.Valid() {
			return nil, mapError(domain.ErrInvalidSpecies)
		}
		filter.Species = species
	}
	if input.Size != nil && *input.Size != "" {
		size := domain.Size(strings.ToLower(*input.Size))
		if !size.Valid() {
			return nil, mapError(domain.ErrInvalidSize)
		}
		filter.Size = size
	}
	if input.Status != nil && *input.Status != "" {
		status := domain.Status(strings.ToLower(*input.Status))
		if !status.Valid() {
			return nil, mapError(domain.ErrInvalidStatus)
		}
		filter.Statuses = []domain.Status{status}
	}
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListByShelter returns every animal owned by shelterID regardless of status.
func (s *Service) ListByShelter(ctx context.Context, shelterID string) ([]*types.AnimalProjection, error) {
	result, err := s.repo.List(ctx, ports.Filter{ShelterID: shelterID})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// Update applies a partial update. Availability is owned by the adoption workflow.
func (s *Service) Update(ctx context.Context, input types.UpdateAnimalInput) (*types.AnimalProjection, error) {
	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	animal := current.Entity
	if !identity.CanManageAnimal(input.Actor, animal.ShelterID) {
		return nil, ErrForbidden
	}
	if err := applyUpdate(animal, input); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, animal)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Delete removes an animal owned by the caller.
func (s *Service) Delete(ctx context.Context, input types.DeleteAnimalInput) error {
	current, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return mapError(err)
	}
	if !identity.CanManageAnimal(input.Actor, current.Entity.ShelterID) {
		return ErrForbidden
	}
	return mapError(s.repo.Delete(ctx, input.ID))
}

// Compatibility scores one animal for the caller, degrading to the fallback estimate.
func (s *Service) Compatibility(ctx context.Context, input types.CompatibilityInput) (*types.CompatibilityResult, error) {
	current, err := s.repo.GetByID(ctx, input.AnimalID)
	if err != nil {
		return nil, mapError(err)
	}
	profile, ok := s.profile(ctx, input.Actor.UserID)
	if !ok {
		return estimated(current.Entity.ID), nil
	}
	scoreCtx, cancel := context.WithTimeout(ctx, s.scorerTimeout)
	defer cancel()
	match, err := s.scorer.Score(scoreCtx, profile, traitsOf(current.Entity))
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "compatibility scorer unavailable, using fallback score",
			slog.String("animal.id", current.Entity.ID), slog.String("error", err.Error()))
		return estimated(current.Entity.ID), nil
	}
	return &types.CompatibilityResult{
		AnimalID:       current.Entity.ID,
		Score:          match.Score,
		Recommendation: recommendationOf(match),
	}, nil
}

// Recommendations ranks animals by compatibility, highest first.
func (s *Service) Recommendations(ctx context.Context, input types.RecommendationsInput) ([]types.Recommendation, error) {
	filter := ports.Filter{Statuses: []domain.Status{domain.StatusAvailable}}
	if len(input.AnimalIDs) > 0 {
		filter = ports.Filter{IDs: input.AnimalIDs}
	}
	animals, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	if len(animals) == 0 {
		return []types.Recommendation{}, nil
	}

	results := make([]types.Recommendation, len(animals))
	for i, animal := range animals {
		results[i] = types.Recommendation{Animal: animal, Compatibility: *estimated(animal.Entity.ID)}
	}

	profile, ok := s.profile(ctx, input.Actor.UserID)
	if ok {
		traits := make([]matching.Traits, 0, len(animals))
		for _, animal := range animals {
			traits = append(traits, traitsOf(animal.Entity))
		}
		scoreCtx, cancel := context.WithTimeout(ctx, s.scorerTimeout)
		matches, err := s.scorer.ScoreBatch(scoreCtx, profile, traits)
		cancel()
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "compatibility scorer unavailable, using fallback scores",
				slog.Int("animals", len(animals)), slog.String("error", err.Error()))
		} else {
			byID := make(map[string]matching.Match, len(matches))
			for _, match := range matches {
				byID[match.AnimalID] = match
			}
			for i := range results {
				if match, found := byID[results[i].Animal.Entity.ID]; found {
					results[i].Compatibility = types.CompatibilityResult{
						AnimalID:       match.AnimalID,
						Score:          match.Score,
						Recommendation: recommendationOf(match),
					}
				}
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Compatibility.Score > results[j].Compatibility.Score
	})
	return results, nil
}

func (s *Service) profile(ctx context.Context, userID string) (matching.Profile, bool) {
	if s.scorer == nil || s.profiles == nil || userID == "" {
		return matching.Profile{}, false
	}
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "lifestyle profile unavailable, using fallback score",
			slog.String("user.id", userID), slog.String("error", err.Error()))
		return matching.Profile{}, false
	}
	return profile, true
}

func applyUpdate(target *domain.Animal, input types.UpdateAnimalInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Species != nil {
		if err := target.SetSpecies(domain.Species(*input.Species)); err != nil {
			return err
		}
	}
	if input.Breed != nil {
		if err := target.SetBreed(*input.Breed); err != nil {
			return err
		}
	}
	if input.Age != nil {
		if err := target.SetAge(*input.Age); err != nil {
			return err
		}
	}
	if input.Size != nil {
		if err := target.SetSize(domain.Size(*input.Size)); err != nil {
			return err
		}
	}
	if input.EnergyLevel != nil {
		if err := target.SetEnergyLevel(*input.EnergyLevel); err != nil {
			return err
		}
	}
	if input.Description != nil {
		if err := target.Describe(*input.Description); err != nil {
			return err
		}
	}
	if input.GoodWithChildren != nil {
		target.GoodWithChildren = *input.GoodWithChildren
	}
	if input.GoodWithPets != nil {
		target.GoodWithPets = *input.GoodWithPets
	}
	if input.PhotoURLs != nil {
		target.ReplacePhotos(*input.PhotoURLs)
	}
	return nil
}

func traitsOf(animal *domain.Animal) matching.Traits {
	return matching.Traits{
		AnimalID:         animal.ID,
		Species:          string(animal.Species),
		Age:              animal.Age,
		Size:             string(animal.Size),
		EnergyLevel:      animal.EnergyLevel,
		GoodWithChildren: animal.GoodWithChildren,
		GoodWithPets:     animal.GoodWithPets,
	}
}

func estimated(animalID string) *types.CompatibilityResult {
	fallback := matching.Fallback(animalID)
	return &types.CompatibilityResult{
		AnimalID:       animalID,
		Score:          fallback.Score,
		Recommendation: fallback.Recommendation,
		Estimated:      true,
	}
}

func recommendationOf(match matching.Match) string {
	if match.Recommendation != "" {
		return match.Recommendation
	}
	return matching.Recommendation(match.Score)
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

var _ ports.Service = (*Service)(nil)
