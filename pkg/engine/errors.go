// Package engine validates workflow graphs and executes them sequentially
// or level-parallel with timeout and cancellation handling.
package engine

import (
	"errors"
	"fmt"
)

// Structural validation failures. Validation is all-or-nothing and runs
// before any node does; a failed validation never creates an execution.
var (
	ErrDuplicateNodeID = errors.New("duplicate node id")
	ErrUnknownEdgeNode = errors.New("edge references unknown node")
	ErrSelfLoop        = errors.New("edge forms a self-loop")
	ErrCycle           = errors.New("workflow contains a cycle")
	ErrNoEntryNode     = errors.New("workflow has no entry node")
)

// Node-level failures.
var (
	// ErrNodeTimeout marks a node that exceeded its deadline.
	ErrNodeTimeout = errors.New("node execution timed out")

	// ErrParameterRejected marks parameters the node or its schema refused
	// before execution.
	ErrParameterRejected = errors.New("parameters rejected")
)

// ValidationError reports a structural defect with the offending ids.
type ValidationError struct {
	Err    error
	NodeID string
	From   string
	To     string
}

func (e *ValidationError) Error() string {
	switch {
	case e.NodeID != "":
		return fmt.Sprintf("workflow validation failed: %v: %s", e.Err, e.NodeID)
	case e.From != "" || e.To != "":
		return fmt.Sprintf("workflow validation failed: %v: %s -> %s", e.Err, e.From, e.To)
	default:
		return fmt.Sprintf("workflow validation failed: %v", e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NodeFailure carries the first failing node's id and message. It is the
// error recorded on the execution when a node fails or times out.
type NodeFailure struct {
	NodeID  string
	Message string
	Err     error
}

func (e *NodeFailure) Error() string {
	return fmt.Sprintf("node %s failed: %s", e.NodeID, e.Message)
}

func (e *NodeFailure) Unwrap() error {
	return e.Err
}

// IsTimeout checks whether an error stems from a node deadline expiry.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrNodeTimeout)
}

// IsValidationError checks whether an error is a structural validation
// failure.
func IsValidationError(err error) bool {
	var validation *ValidationError

	return errors.As(err, &validation)
}
