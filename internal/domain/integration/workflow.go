package integration

import (
	"context"

	"github.com/google/uuid"
)

// WorkflowAdapter is the port to the workflow-automation trigger
type WorkflowAdapter interface {
	// TestConnection verifies the workflow endpoint is reachable
	TestConnection(ctx context.Context, tenantID uuid.UUID) error

	// TriggerWorkflow starts a workflow run with the given payload
	TriggerWorkflow(ctx context.Context, tenantID uuid.UUID, workflowID string, payload map[string]any) error
}
