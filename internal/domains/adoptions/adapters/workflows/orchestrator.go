package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/adoptions"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalDecisionWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineDecisionWorkflows)(nil)
)

// TemporalDecisionWorkflows runs shelter decisions on a Temporal cluster.
type TemporalDecisionWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalDecisionWorkflows wires a Temporal client into the orchestrator.
func NewTemporalDecisionWorkflows(c client.Client) *TemporalDecisionWorkflows {
	return &TemporalDecisionWorkflows{client: c, taskQueue: adoptionworkflows.AdoptionDecisionTaskQueue}
}

// DecideRequest starts the decision workflow and waits for its result. One
// decision per request runs at a time; a concurrent one fails with ErrConflict.
func (o *TemporalDecisionWorkflows) DecideRequest(ctx context.Context, input adoptiontypes.UpdateStatusInput) (*adoptiontypes.RequestView, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal decision workflows not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                                       DecisionWorkflowID(input.RequestID),
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		adoptionworkflows.AdoptionDecisionWorkflow,
		adoptionworkflows.AdoptionDecisionWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: a decision for request %s is already running", adoptionsapp.ErrConflict, input.RequestID)
		}
		return nil, err
	}
	var view adoptiontypes.RequestView
	if err := run.Get(ctx, &view); err != nil {
		return nil, adoptionactivities.FromApplicationError(err)
	}
	return &view, nil
}

// DecisionWorkflowID is deterministic per request.
func DecisionWorkflowID(requestID string) string {
	return "adoption-decision-" + requestID
}

// InlineDecisionWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineDecisionWorkflows struct {
	service ports.Service
}

// NewInlineDecisionWorkflows wraps the adoptions service for synchronous execution.
func NewInlineDecisionWorkflows(service ports.Service) *InlineDecisionWorkflows {
	return &InlineDecisionWorkflows{service: service}
}

func (o *InlineDecisionWorkflows) DecideRequest(ctx context.Context, input adoptiontypes.UpdateStatusInput) (*adoptiontypes.RequestView, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline decision workflows not configured")
	}
	return o.service.UpdateStatus(ctx, input)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
