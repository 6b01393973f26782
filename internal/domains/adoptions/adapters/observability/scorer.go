package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/matching"
)

// Scorer traces compatibility calls and counts the ones that will degrade to
// the fallback score.
type Scorer struct {
	inner     ports.CompatibilityScorer
	tracer    trace.Tracer
	fallbacks metric.Int64Counter
}

// NewScorer wraps inner. A nil meter disables the counter.
func NewScorer(inner ports.CompatibilityScorer, tracer trace.Tracer, meter metric.Meter) *Scorer {
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	s := &Scorer{inner: inner, tracer: tracer}
	if meter != nil {
		s.fallbacks, _ = meter.Int64Counter("adoptions.service.scorer_fallbacks",
			metric.WithDescription("Number of scorer failures replaced by the fallback score"))
	}
	return s
}

func (s *Scorer) Score(ctx context.Context, profile matching.Profile, traits matching.Traits) (matching.Match, error) {
	ctx, span := s.tracer.Start(ctx, "Scorer.Score", trace.WithAttributes(attribute.String("animal.id", traits.AnimalID)))
	defer span.End()

	match, err := s.inner.Score(ctx, profile, traits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if s.fallbacks != nil {
			s.fallbacks.Add(ctx, 1)
		}
		return match, err
	}
	span.SetAttributes(attribute.Float64("compatibility.score", match.Score))
	return match, nil
}

var _ ports.CompatibilityScorer = (*Scorer)(nil)
