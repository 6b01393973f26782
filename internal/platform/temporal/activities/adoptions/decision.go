package adoptions

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

const (
	// DecideRequestActivityName applies a shelter decision through the adoptions service.
	DecideRequestActivityName = "adoptions.activities.DecideRequest"
	// ReconcileActivityName repairs drifted animal statuses.
	ReconcileActivityName = "adoptions.activities.Reconcile"
)

// StateDetails travels as ApplicationError details so the caller can rebuild
// the expected/actual status of a state error.
type StateDetails struct {
	Entity   string
	ID       string
	Expected string
	Actual   string
}

// Activities groups activities that operate on the adoptions bounded context.
type Activities struct {
	service adoptionports.Service
}

// NewActivities wires the adoptions service into the Temporal activities bundle.
func NewActivities(service adoptionports.Service) *Activities {
	return &Activities{service: service}
}

// DecideRequest runs one shelter decision. Taxonomy errors are returned as
// non-retryable application errors typed with their error code.
func (a *Activities) DecideRequest(ctx context.Context, input adoptiontypes.UpdateStatusInput) (*adoptiontypes.RequestView, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("decision activity not initialized", "requestId", input.RequestID)
		return nil, errors.New("decision activity not initialized")
	}
	logger.Info("DecideRequest activity started", "requestId", input.RequestID, "status", string(input.Status))
	view, err := a.service.UpdateStatus(ctx, input)
	if err != nil {
		logger.Error("DecideRequest activity failed", "requestId", input.RequestID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("DecideRequest activity completed", "requestId", input.RequestID, "status", string(view.Request.Status))
	return view, nil
}

// Reconcile runs one reconciliation pass.
func (a *Activities) Reconcile(ctx context.Context) (*adoptiontypes.ReconcileReport, error) {
	if a == nil || a.service == nil {
		return nil, errors.New("reconcile activity not initialized")
	}
	report, err := a.service.Reconcile(ctx)
	if err != nil {
		return report, ToApplicationError(err)
	}
	activity.GetLogger(ctx).Info("Reconcile activity completed",
		"released", len(report.Released), "held", len(report.Held), "adopted", len(report.Adopted), "skipped", report.Skipped)
	return report, nil
}

// ToApplicationError converts taxonomy errors; anything else stays retryable.
func ToApplicationError(err error) error {
	code := adoptionsapp.ErrorCode(err)
	if code == "" {
		return err
	}
	var stateErr *adoptionsapp.StateError
	if errors.As(err, &stateErr) {
		return temporal.NewNonRetryableApplicationError(err.Error(), code, err, StateDetails{
			Entity:   stateErr.Entity,
			ID:       stateErr.ID,
			Expected: stateErr.Expected,
			Actual:   stateErr.Actual,
		})
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), code, err)
}

// FromApplicationError rebuilds the taxonomy error carried by err, or returns
// err unchanged.
func FromApplicationError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	sentinel := adoptionsapp.ErrorFromCode(appErr.Type())
	if sentinel == nil {
		return err
	}
	if appErr.HasDetails() {
		var details StateDetails
		if detailErr := appErr.Details(&details); detailErr == nil && details.ID != "" {
			return &adoptionsapp.StateError{
				Entity:   details.Entity,
				ID:       details.ID,
				Expected: details.Expected,
				Actual:   details.Actual,
				Err:      sentinel,
			}
		}
	}
	return &remoteError{sentinel: sentinel, message: appErr.Message()}
}

type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.sentinel }
