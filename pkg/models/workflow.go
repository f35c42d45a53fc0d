// Package models defines the core domain models for DAG workflow execution.
package models

// ExecutionMode selects how the engine schedules node dispatch.
type ExecutionMode string

const (
	// ExecutionModeSequential runs nodes one at a time in plan order.
	ExecutionModeSequential ExecutionMode = "sequential"
	// ExecutionModeParallel runs each dependency level concurrently.
	ExecutionModeParallel ExecutionMode = "parallel"
)

// DefaultOutputLabel is the label used by single-output nodes and by edges
// that do not declare one.
const DefaultOutputLabel = "default"

// WorkflowDefinition describes a workflow as a DAG of typed nodes connected
// by labeled edges. Definitions are immutable once an execution starts.
type WorkflowDefinition struct {
	ID             string            `json:"id"              yaml:"id"`
	Name           string            `json:"name"            yaml:"name"            validate:"required,min=3"`
	Description    string            `json:"description"     yaml:"description"`
	ExecutionMode  ExecutionMode     `json:"execution_mode"  yaml:"execution_mode"  validate:"omitempty,oneof=sequential parallel"`
	TimeoutSeconds uint64            `json:"timeout_seconds" yaml:"timeout_seconds"`
	Nodes          []*NodeDefinition `json:"nodes"           yaml:"nodes"           validate:"required,min=1,dive"`
	Edges          []*EdgeDefinition `json:"edges"           yaml:"edges"           validate:"dive"`
}

// NodeDefinition is a single configured step bound to a capability
// implementation via Type.
type NodeDefinition struct {
	ID             string         `json:"id"              yaml:"id"              validate:"required"`
	Type           string         `json:"node_type"       yaml:"node_type"       validate:"required"`
	Name           string         `json:"name"            yaml:"name"            validate:"required,min=1"`
	TimeoutSeconds uint64         `json:"timeout_seconds" yaml:"timeout_seconds"`
	Parameters     map[string]any `json:"parameters"      yaml:"parameters"`
}

// EdgeDefinition is a directed data link from one node's labeled output to
// another node's labeled input. Empty labels mean DefaultOutputLabel.
type EdgeDefinition struct {
	From       string `json:"from"        yaml:"from"        validate:"required"`
	To         string `json:"to"          yaml:"to"          validate:"required"`
	FromOutput string `json:"from_output" yaml:"from_output"`
	ToInput    string `json:"to_input"    yaml:"to_input"`
}

// SourceLabel returns the output label this edge listens on.
func (e *EdgeDefinition) SourceLabel() string {
	if e.FromOutput == "" {
		return DefaultOutputLabel
	}

	return e.FromOutput
}

// TargetLabel returns the input key downstream nodes receive the data under.
// An unlabeled edge delivers data under the source node's id so fan-in nodes
// can tell their inputs apart.
func (e *EdgeDefinition) TargetLabel() string {
	if e.ToInput == "" || e.ToInput == DefaultOutputLabel {
		return e.From
	}

	return e.ToInput
}

// NodeByID returns the node definition with the given id.
func (w *WorkflowDefinition) NodeByID(id string) (*NodeDefinition, bool) {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// Mode returns the configured execution mode, defaulting to sequential.
func (w *WorkflowDefinition) Mode() ExecutionMode {
	if w.ExecutionMode == "" {
		return ExecutionModeSequential
	}

	return w.ExecutionMode
}

// NodeTimeout returns the effective timeout bound for a node: the smaller of
// the node override and the workflow-wide default. Zero means unbounded.
func (w *WorkflowDefinition) NodeTimeout(node *NodeDefinition) uint64 {
	switch {
	case node.TimeoutSeconds == 0:
		return w.TimeoutSeconds
	case w.TimeoutSeconds == 0:
		return node.TimeoutSeconds
	case node.TimeoutSeconds < w.TimeoutSeconds:
		return node.TimeoutSeconds
	default:
		return w.TimeoutSeconds
	}
}
