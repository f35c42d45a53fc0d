// Package persistence provides the storage abstraction for workflow
// definitions and execution provenance.
package persistence

import (
	"context"

	"github.com/cascadehq/cascade/pkg/models"
)

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error
	DeleteWorkflow(ctx context.Context, id string) error
}

// ExecutionRepository records execution and node-execution lifecycle
// transitions. The engine treats these calls as fire-and-forget observers:
// persistence failures are logged, never propagated into execution logic.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.Execution) error
	UpdateExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
	ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)

	CreateNodeExecution(ctx context.Context, nodeExecution *models.NodeExecution) error
	UpdateNodeExecution(ctx context.Context, nodeExecution *models.NodeExecution) error
	NodeExecutionsByExecution(ctx context.Context, executionID string) ([]*models.NodeExecution, error)
}

// Persistence aggregates the repositories behind a single backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
