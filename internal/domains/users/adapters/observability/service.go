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

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/identity"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input usertypes.RegisterInput) (*usertypes.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.role", input.Role)))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("user.role", input.Role))
	}
	s.metrics.recordRegistered(ctx, string(result.User.Entity.Role))
	s.logInfo(ctx, "user registered", slog.String("user.id", result.User.Entity.ID), slog.String("user.role", string(result.User.Entity.Role)))
	return result, nil
}

func (s *Service) Login(ctx context.Context, input usertypes.LoginInput) (*usertypes.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	result, err := s.inner.Login(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	span.SetAttributes(attribute.String("user.id", result.User.Entity.ID))
	s.metrics.recordLogin(ctx)
	return result, nil
}

func (s *Service) Profile(ctx context.Context, actor identity.Actor) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Profile", trace.WithAttributes(attribute.String("user.id", actor.UserID)))
	defer span.End()
	return s.inner.Profile(ctx, actor)
}

func (s *Service) UpdateProfile(ctx context.Context, input usertypes.UpdateProfileInput) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.String("user.id", input.Actor.UserID)))
	defer span.End()
	result, err := s.inner.UpdateProfile(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.String("user.id", input.Actor.UserID))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) Get(ctx context.Context, id string) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	return s.inner.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, actor identity.Actor) ([]*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()
	result, err := s.inner.List(ctx, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users", slog.String("actor.id", actor.UserID))
	}
	span.SetAttributes(attribute.Int("user.count", len(result)))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	if err := s.inner.Delete(ctx, actor, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete user", slog.String("user.id", id), slog.String("actor.id", actor.UserID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "user deleted", slog.String("user.id", id))
	return nil
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
	registered metric.Int64Counter
	updated    metric.Int64Counter
	deleted    metric.Int64Counter
	logins     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of accounts registered"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of profile updates"))
	deleted, _ := m.Int64Counter("users.service.deleted", metric.WithDescription("Number of accounts deleted"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	return serviceMetrics{registered: registered, updated: updated, deleted: deleted, logins: logins}
}

func (m serviceMetrics) recordRegistered(ctx context.Context, role string) {
	if m.registered != nil {
		m.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", role)))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.updated != nil {
		m.updated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.deleted != nil {
		m.deleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
