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

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability/service"

// Service decorates the adoptions application port with tracing, logging, and metrics.
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

// CreateRequest files a request with instrumentation.
func (s *Service) CreateRequest(ctx context.Context, input adoptiontypes.CreateRequestInput) (*adoptiontypes.RequestView, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateRequest",
		attribute.String("user.id", input.Actor.UserID),
		attribute.String("animal.id", input.AnimalID),
		attribute.Bool("adoption.idempotent", input.IdempotencyKey != ""))
	defer span.End()

	s.logInfo(ctx, "creating adoption request", slog.String("user.id", input.Actor.UserID), slog.String("animal.id", input.AnimalID))
	result, err := s.inner.CreateRequest(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create adoption request",
			slog.String("user.id", input.Actor.UserID), slog.String("animal.id", input.AnimalID))
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.String("adoption.request_id", result.Request.ID))
	s.logInfo(ctx, "adoption request created",
		slog.String("adoption.request_id", result.Request.ID),
		slog.String("animal.id", result.Request.AnimalID))
	return result, nil
}

// UpdateStatus records a shelter decision with instrumentation.
func (s *Service) UpdateStatus(ctx context.Context, input adoptiontypes.UpdateStatusInput) (*adoptiontypes.RequestView, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus",
		attribute.String("adoption.request_id", input.RequestID),
		attribute.String("adoption.status", string(input.Status)))
	defer span.End()

	s.logInfo(ctx, "deciding adoption request",
		slog.String("adoption.request_id", input.RequestID),
		slog.String("status", string(input.Status)),
		slog.String("actor.id", input.Actor.UserID))
	result, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to decide adoption request",
			slog.String("adoption.request_id", input.RequestID), slog.String("status", string(input.Status)))
	}
	s.metrics.recordDecision(ctx, string(result.Request.Status))
	s.logInfo(ctx, "adoption request decided",
		slog.String("adoption.request_id", result.Request.ID),
		slog.String("animal.id", result.Request.AnimalID),
		slog.String("status", string(result.Request.Status)))
	return result, nil
}

func (s *Service) RemoveRequest(ctx context.Context, input adoptiontypes.RemoveRequestInput) error {
	ctx, span := s.startSpan(ctx, "Service.RemoveRequest", attribute.String("adoption.request_id", input.RequestID))
	defer span.End()

	if err := s.inner.RemoveRequest(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to remove adoption request",
			slog.String("adoption.request_id", input.RequestID), slog.String("user.id", input.Actor.UserID))
	}
	s.metrics.recordRemoved(ctx)
	s.logInfo(ctx, "adoption request removed", slog.String("adoption.request_id", input.RequestID))
	return nil
}

func (s *Service) Get(ctx context.Context, input adoptiontypes.GetRequestInput) (*adoptiontypes.RequestView, error) {
	ctx, span := s.startSpan(ctx, "Service.Get", attribute.String("adoption.request_id", input.RequestID))
	defer span.End()

	result, err := s.inner.Get(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get adoption request", slog.String("adoption.request_id", input.RequestID))
	}
	return result, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*adoptiontypes.RequestView, error) {
	ctx, span := s.startSpan(ctx, "Service.ListForUser", attribute.String("user.id", userID))
	defer span.End()

	result, err := s.inner.ListForUser(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list user adoption requests", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Int("adoption.result.count", len(result)))
	return result, nil
}

func (s *Service) ListForShelter(ctx context.Context, input adoptiontypes.ListForShelterInput) ([]*adoptiontypes.RequestView, error) {
	ctx, span := s.startSpan(ctx, "Service.ListForShelter", attribute.String("shelter.id", input.ShelterID))
	defer span.End()

	result, err := s.inner.ListForShelter(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list shelter adoption requests", slog.String("shelter.id", input.ShelterID))
	}
	span.SetAttributes(attribute.Int("adoption.result.count", len(result)))
	return result, nil
}

func (s *Service) ListForActor(ctx context.Context, actor identity.Actor) ([]*adoptiontypes.RequestView, error) {
	ctx, span := s.startSpan(ctx, "Service.ListForActor",
		attribute.String("user.id", actor.UserID),
		attribute.String("user.role", string(actor.Role)))
	defer span.End()

	result, err := s.inner.ListForActor(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list adoption requests", slog.String("user.id", actor.UserID))
	}
	span.SetAttributes(attribute.Int("adoption.result.count", len(result)))
	return result, nil
}

// Reconcile repairs drifted animal statuses with instrumentation.
func (s *Service) Reconcile(ctx context.Context) (*adoptiontypes.ReconcileReport, error) {
	ctx, span := s.startSpan(ctx, "Service.Reconcile")
	defer span.End()

	report, err := s.inner.Reconcile(ctx)
	if err != nil {
		return report, s.handleError(ctx, span, err, "reconciliation failed")
	}
	span.SetAttributes(
		attribute.Int("reconcile.released", len(report.Released)),
		attribute.Int("reconcile.held", len(report.Held)),
		attribute.Int("reconcile.adopted", len(report.Adopted)),
		attribute.Int("reconcile.skipped", report.Skipped))
	s.logInfo(ctx, "reconciliation finished",
		slog.Int("released", len(report.Released)),
		slog.Int("held", len(report.Held)),
		slog.Int("adopted", len(report.Adopted)),
		slog.Int("skipped", report.Skipped))
	return report, nil
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
	created   metric.Int64Counter
	decisions metric.Int64Counter
	removed   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("adoptions.service.requests_created", metric.WithDescription("Number of adoption requests filed"))
	decisions, _ := m.Int64Counter("adoptions.service.decisions", metric.WithDescription("Number of shelter decisions applied"))
	removed, _ := m.Int64Counter("adoptions.service.requests_removed", metric.WithDescription("Number of adoption requests withdrawn"))
	return serviceMetrics{created: created, decisions: decisions, removed: removed}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDecision(ctx context.Context, status string) {
	if m.decisions != nil {
		m.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("adoption.status", status)))
	}
}

func (m serviceMetrics) recordRemoved(ctx context.Context) {
	if m.removed != nil {
		m.removed.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
