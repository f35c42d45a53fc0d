package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus is the lifecycle state of an execution or node execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusSuccess   ExecutionStatus = "success"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status is a final state.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusSuccess, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	case ExecutionStatusPending, ExecutionStatusRunning:
		return false
	default:
		return false
	}
}

// Execution is one run of a workflow against a given input. Created when the
// run begins and mutated only by the engine; terminal once FinishedAt is set.
type Execution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id"`
	Status     ExecutionStatus `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	InputData  map[string]any  `json:"input_data,omitempty"`
	OutputData map[string]any  `json:"output_data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewExecution creates a running execution record for a workflow.
func NewExecution(workflowID string, input map[string]any) *Execution {
	return &Execution{
		ID:         "exec-" + uuid.New().String()[:8],
		WorkflowID: workflowID,
		Status:     ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
		InputData:  input,
	}
}

// Finish transitions the execution into a terminal state.
func (e *Execution) Finish(status ExecutionStatus, output map[string]any, errMsg string) {
	now := time.Now().UTC()
	e.Status = status
	e.FinishedAt = &now
	e.OutputData = output
	e.Error = errMsg
}

// NodeExecution records one node invocation within an execution. Created at
// dispatch, finalized on completion, failure or timeout.
type NodeExecution struct {
	ID          string          `json:"id"`
	ExecutionID string          `json:"execution_id"`
	NodeID      string          `json:"node_id"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	InputData   map[string]any  `json:"input_data,omitempty"`
	OutputData  map[string]any  `json:"output_data,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// NewNodeExecution creates a running node execution record.
func NewNodeExecution(executionID, nodeID string) *NodeExecution {
	return &NodeExecution{
		ID:          "nexec-" + uuid.New().String()[:8],
		ExecutionID: executionID,
		NodeID:      nodeID,
		Status:      ExecutionStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
}

// Finish transitions the node execution into a terminal state.
func (n *NodeExecution) Finish(status ExecutionStatus, output map[string]any, errMsg string) {
	now := time.Now().UTC()
	n.Status = status
	n.FinishedAt = &now
	n.OutputData = output
	n.Error = errMsg
}
