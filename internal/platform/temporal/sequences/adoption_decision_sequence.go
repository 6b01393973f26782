package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/adoptions"
)

// nonRetryable lists the taxonomy codes a retry cannot fix.
var nonRetryable = []string{
	adoptionsapp.CodeNotFound,
	adoptionsapp.CodeInvalidState,
	adoptionsapp.CodeDuplicateRequest,
	adoptionsapp.CodeForbidden,
	adoptionsapp.CodeConflict,
	adoptionsapp.CodeInvalidInput,
	adoptionsapp.CodeIdempotencyConflict,
}

// RunAdoptionDecisionSequence applies a shelter decision through the decision activity.
func RunAdoptionDecisionSequence(ctx workflow.Context, input adoptiontypes.UpdateStatusInput) (*adoptiontypes.RequestView, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("adoption decision sequence started", "requestId", input.RequestID, "status", string(input.Status))
	decideOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: nonRetryable,
		},
	}

	var view adoptiontypes.RequestView
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, decideOptions), adoptionactivities.DecideRequestActivityName, input).Get(ctx, &view)
	if err != nil {
		logger.Error("adoption decision sequence failed", "requestId", input.RequestID, "error", err)
		return nil, err
	}
	logger.Info("adoption decision sequence applied", "requestId", input.RequestID, "status", string(view.Request.Status))
	return &view, nil
}
