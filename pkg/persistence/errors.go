// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given id.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates an execution was not found by the given id.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrNodeExecutionNotFound indicates a node execution record was not found.
	ErrNodeExecutionNotFound = errors.New("node execution not found")

	// ErrWorkflowAlreadyExists indicates a workflow with the same id exists.
	ErrWorkflowAlreadyExists = errors.New("workflow already exists")
)

// WorkflowError wraps workflow storage errors with operation context.
type WorkflowError struct {
	Op  string // operation being performed, e.g. "get", "save"
	ID  string
	Err error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.ID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a workflow error with context.
func NewWorkflowError(op, id string, err error) *WorkflowError {
	return &WorkflowError{Op: op, ID: id, Err: err}
}

// ExecutionError wraps execution storage errors with operation context.
type ExecutionError struct {
	Op  string
	ID  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s operation failed for execution %s: %v", e.Op, e.ID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExecutionError creates an execution error with context.
func NewExecutionError(op, id string, err error) *ExecutionError {
	return &ExecutionError{Op: op, ID: id, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates a missing execution.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
