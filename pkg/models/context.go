package models

import (
	"maps"
	"slices"

	"github.com/cascadehq/cascade/pkg/variables"
)

// ExecutionContext carries the runtime view a node sees while executing: the
// original workflow input, the merged outputs of its direct predecessors and
// the shared variable store. It is built per dispatch and never persisted.
type ExecutionContext struct {
	ExecutionID string
	WorkflowID  string
	NodeID      string

	// Input is the read-only original workflow input.
	Input map[string]any

	// Inputs holds the outputs of direct predecessors, keyed by the inbound
	// edge's target label.
	Inputs map[string]map[string]any

	// NodeResults holds the outputs of all completed upstream nodes keyed by
	// node id, for template references like {{node_id.path}}.
	NodeResults map[string]map[string]any

	// Variables is the execution-scoped shared store.
	Variables *variables.Store
}

// PrimaryInput returns the merged predecessor view a single-input node works
// on. With exactly one inbound input it is that input; with several, the
// inputs are merged in key order with later keys overriding earlier ones.
// With none, it falls back to the original workflow input.
func (c *ExecutionContext) PrimaryInput() map[string]any {
	if len(c.Inputs) == 0 {
		return c.Input
	}

	if len(c.Inputs) == 1 {
		for _, input := range c.Inputs {
			return input
		}
	}

	merged := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(c.Inputs)) {
		maps.Copy(merged, c.Inputs[key])
	}

	return merged
}

// NodeOutput is the result a node capability produces.
type NodeOutput struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`

	// Label names the output port the data was produced on. Empty means
	// DefaultOutputLabel; conditional-style nodes use labels like "true" and
	// "false" so downstream edges can route on the outcome.
	Label string `json:"output_label,omitempty"`
}

// OutputLabel returns the effective output label.
func (o *NodeOutput) OutputLabel() string {
	if o.Label == "" {
		return DefaultOutputLabel
	}

	return o.Label
}

// SuccessOutput creates a successful output on the default port.
func SuccessOutput(data map[string]any) *NodeOutput {
	return &NodeOutput{Success: true, Data: data}
}

// LabeledOutput creates a successful output on a named port.
func LabeledOutput(label string, data map[string]any) *NodeOutput {
	return &NodeOutput{Success: true, Data: data, Label: label}
}

// ErrorOutput creates a failed output with a message.
func ErrorOutput(message string) *NodeOutput {
	return &NodeOutput{Success: false, Error: message}
}
