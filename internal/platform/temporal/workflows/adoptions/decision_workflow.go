package adoptions

import (
	"go.temporal.io/sdk/workflow"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/platform/temporal/sequences"
)

const (
	// AdoptionDecisionWorkflowName is the public identifier for registering the workflow.
	AdoptionDecisionWorkflowName = "adoptions.workflows.Decision"
	// AdoptionDecisionTaskQueue is the queue consumed by the worker processing decisions.
	AdoptionDecisionTaskQueue = "ADOPTION_DECISIONS"
)

// AdoptionDecisionWorkflowInput carries a shelter decision.
type AdoptionDecisionWorkflowInput struct {
	Command adoptiontypes.UpdateStatusInput
	TraceID string
}

// AdoptionDecisionWorkflow applies a shelter decision and its cascades.
func AdoptionDecisionWorkflow(ctx workflow.Context, input AdoptionDecisionWorkflowInput) (*adoptiontypes.RequestView, error) {
	logger := workflow.GetLogger(ctx)
	requestID := input.Command.RequestID
	logger.Info("AdoptionDecisionWorkflow started", withTraceID(input.TraceID, "requestId", requestID, "status", string(input.Command.Status))...)
	view, err := sequences.RunAdoptionDecisionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("AdoptionDecisionWorkflow failed", withTraceID(input.TraceID, "requestId", requestID, "error", err)...)
		return nil, err
	}
	logger.Info("AdoptionDecisionWorkflow completed", withTraceID(input.TraceID, "requestId", requestID)...)
	return view, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
