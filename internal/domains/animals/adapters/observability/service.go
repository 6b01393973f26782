package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	animaltypes "github.com/Apurer/pet-adoption-api/internal/domains/animals/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/animals/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/animals/adapters/observability/service"

// Service decorates the animals application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Create lists a new animal with instrumentation.
func (s *Service) Create(ctx context.Context, input animaltypes.CreateAnimalInput) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Create", attribute.String("shelter.id", input.Actor.UserID))
	defer span.End()

	s.logInfo(ctx, "creating animal", slog.String("shelter.id", input.Actor.UserID), slog.String("species", input.Species))
	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create animal", slog.String("shelter.id", input.Actor.UserID))
	}
	s.metrics.recordCreated(ctx, string(result.Entity.Species))
	span.SetAttributes(attribute.String("animal.id", result.Entity.ID))
	s.logInfo(ctx, "animal created", slog.String("animal.id", result.Entity.ID), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

func (s *Service) Get(ctx context.Context, id string) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Get", attribute.String("animal.id", id))
	defer span.End()

	result, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get animal", slog.String("animal.id", id))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input animaltypes.ListAnimalsInput) ([]*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.List")
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list animals")
	}
	span.SetAttributes(attribute.Int("animal.result.count", len(result)))
	return result, nil
}

func (s *Service) ListByShelter(ctx context.Context, shelterID string) ([]*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListByShelter", attribute.String("shelter.id", shelterID))
	defer span.End()

	result, err := s.inner.ListByShelter(ctx, shelterID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list shelter animals", slog.String("shelter.id", shelterID))
	}
	span.SetAttributes(attribute.Int("animal.result.count", len(result)))
	return result, nil
}

// Update applies a partial update with instrumentation.
func (s *Service) Update(ctx context.Context, input animaltypes.UpdateAnimalInput) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Update", attribute.String("animal.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "updating animal", slog.String("animal.id", input.ID), slog.String("actor.id", input.Actor.UserID))
	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update animal", slog.String("animal.id", input.ID))
	}
	s.metrics.recordUpdated(ctx, string(result.Entity.Species))
	s.logInfo(ctx, "animal updated", slog.String("animal.id", input.ID))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, input animaltypes.DeleteAnimalInput) error {
	ctx, span := s.startSpan(ctx, "Service.Delete", attribute.String("animal.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "deleting animal", slog.String("animal.id", input.ID), slog.String("actor.id", input.Actor.UserID))
	if err := s.inner.Delete(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete animal", slog.String("animal.id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "animal deleted", slog.String("animal.id", input.ID))
	return nil
}

func (s *Service) Compatibility(ctx context.Context, input animaltypes.CompatibilityInput) (*animaltypes.CompatibilityResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Compatibility",
		attribute.String("animal.id", input.AnimalID),
		attribute.String("user.id", input.Actor.UserID))
	defer span.End()

	result, err := s.inner.Compatibility(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to score animal", slog.String("animal.id", input.AnimalID))
	}
	span.SetAttributes(
		attribute.Float64("compatibility.score", result.Score),
		attribute.Bool("compatibility.estimated", result.Estimated))
	return result, nil
}

func (s *Service) Recommendations(ctx context.Context, input animaltypes.RecommendationsInput) ([]animaltypes.Recommendation, error) {
	ctx, span := s.startSpan(ctx, "Service.Recommendations",
		attribute.String("user.id", input.Actor.UserID),
		attribute.Int("animal.requested.count", len(input.AnimalIDs)))
	defer span.End()

	result, err := s.inner.Recommendations(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to rank animals", slog.String("user.id", input.Actor.UserID))
	}
	span.SetAttributes(attribute.Int("animal.result.count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	created metric.Int64Counter
	updated metric.Int64Counter
	deleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("animals.service.created", metric.WithDescription("Number of animals listed"))
	updated, _ := m.Int64Counter("animals.service.updated", metric.WithDescription("Number of animal updates"))
	deleted, _ := m.Int64Counter("animals.service.deleted", metric.WithDescription("Number of animals removed"))
	return serviceMetrics{created: created, updated: updated, deleted: deleted}
}

func (m serviceMetrics) recordCreated(ctx context.Context, species string) {
	if m.created != nil {
		m.created.Add(ctx, 1, metric.WithAttributes(attribute.String("animal.species", species)))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context, species string) {
	if m.updated != nil {
		m.updated.Add(ctx, 1, metric.WithAttributes(attribute.String("animal.species", species)))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.deleted != nil {
		m.deleted.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
