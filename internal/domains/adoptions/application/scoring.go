package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

// score asks the scorer for the requester/animal fit. Any failure degrades to
// the fallback score and is logged, never returned.
func (s *Service) score(ctx context.Context, userID string, animal ports.AnimalSnapshot) float64 {
	value, err := s.tryScore(ctx, userID, animal)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "compatibility scorer unavailable, using fallback score",
			slog.String("user.id", userID),
			slog.String("animal.id", animal.ID),
			slog.Float64("score", s.fallbackScore),
			slog.String("error", err.Error()))
		return s.fallbackScore
	}
	return value
}

func (s *Service) tryScore(ctx context.Context, userID string, animal ports.AnimalSnapshot) (float64, error) {
	if s.scorer == nil {
		return 0, fmt.Errorf("%w: no scorer configured", ErrScorerUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, s.scorerTimeout)
	defer cancel()

	profile, err := s.requesterProfile(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScorerUnavailable, err)
	}
	match, err := s.scorer.Score(ctx, profile, animal.Traits())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScorerUnavailable, err)
	}
	if match.Score < 0 || match.Score > 100 {
		return 0, fmt.Errorf("%w: score %.2f out of range", ErrScorerUnavailable, match.Score)
	}
	return match.Score, nil
}

func (s *Service) requesterProfile(ctx context.Context, userID string) (matching.Profile, error) {
	if s.directory == nil {
		return matching.Profile{}, fmt.Errorf("no directory configured")
	}
	party, err := s.directory.Lookup(ctx, userID)
	if err != nil {
		return matching.Profile{}, err
	}
	return party.Profile, nil
}
