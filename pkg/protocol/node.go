// Package protocol defines the interfaces pluggable nodes must satisfy.
package protocol

import (
	"context"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/models"
)

// Node is the capability contract every workflow step implements. The
// engine calls ValidateParameters once at dispatch time; a validation
// failure is recorded as a node failure without Execute ever running.
// Execute may block on external I/O; the engine bounds it with the node's
// deadline and cancels it through ctx.
type Node interface {
	// Type returns the node type identifier (e.g. "http_request").
	Type() string

	// ValidateParameters rejects malformed parameters before execution.
	ValidateParameters(params map[string]any) error

	// Execute runs the node against the execution context. Returning an
	// error and returning an output with Success=false are both recorded as
	// node failures.
	Execute(ctx context.Context, execCtx *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error)
}

// NodeFactory creates node instances and describes the node type.
type NodeFactory interface {
	// Create creates a new node instance.
	Create() Node

	// ID returns the unique identifier for this node type.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for this node type's parameters.
	Schema() map[string]any
}

// Dependencies contains the common collaborators node factories may need.
type Dependencies struct {
	Logger *slog.Logger
}
