// Package testutil provides test data builders for workflow definitions.
package testutil

import (
	"github.com/cascadehq/cascade/pkg/models"
)

// CreateTestNode creates a node definition with default values that can be
// overridden.
func CreateTestNode(id string, overrides ...func(*models.NodeDefinition)) *models.NodeDefinition {
	node := &models.NodeDefinition{
		ID:         id,
		Type:       "transform",
		Name:       "Test Node " + id,
		Parameters: map[string]any{"mapping": map[string]any{"node": id}},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithType sets the node type.
func WithType(nodeType string) func(*models.NodeDefinition) {
	return func(n *models.NodeDefinition) {
		n.Type = nodeType
	}
}

// WithParameters sets the node parameters.
func WithParameters(params map[string]any) func(*models.NodeDefinition) {
	return func(n *models.NodeDefinition) {
		n.Parameters = params
	}
}

// WithNodeTimeout sets the node timeout in seconds.
func WithNodeTimeout(seconds uint64) func(*models.NodeDefinition) {
	return func(n *models.NodeDefinition) {
		n.TimeoutSeconds = seconds
	}
}

// Edge creates an unlabeled edge.
func Edge(from, to string) *models.EdgeDefinition {
	return &models.EdgeDefinition{From: from, To: to}
}

// LabeledEdge creates an edge listening on a specific output label.
func LabeledEdge(from, to, fromOutput string) *models.EdgeDefinition {
	return &models.EdgeDefinition{From: from, To: to, FromOutput: fromOutput}
}

// CreateTestWorkflow creates a workflow definition from nodes and edges with
// sensible defaults that can be overridden.
func CreateTestWorkflow(nodes []*models.NodeDefinition, edges []*models.EdgeDefinition, overrides ...func(*models.WorkflowDefinition)) *models.WorkflowDefinition {
	def := &models.WorkflowDefinition{
		ID:    "wf-test",
		Name:  "Test Workflow",
		Nodes: nodes,
		Edges: edges,
	}

	for _, override := range overrides {
		override(def)
	}

	return def
}

// WithMode sets the execution mode.
func WithMode(mode models.ExecutionMode) func(*models.WorkflowDefinition) {
	return func(w *models.WorkflowDefinition) {
		w.ExecutionMode = mode
	}
}

// WithWorkflowTimeout sets the workflow-wide timeout in seconds.
func WithWorkflowTimeout(seconds uint64) func(*models.WorkflowDefinition) {
	return func(w *models.WorkflowDefinition) {
		w.TimeoutSeconds = seconds
	}
}
