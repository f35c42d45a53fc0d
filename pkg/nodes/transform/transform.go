// Package transform provides the node that reshapes its input into a new
// object described by a template mapping.
package transform

import (
	"context"
	"fmt"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "transform"

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	mapping, ok := params["mapping"]
	if !ok {
		return fmt.Errorf("transform node requires a mapping")
	}

	if _, ok := mapping.(map[string]any); !ok {
		return fmt.Errorf("transform mapping must be an object")
	}

	return nil
}

// Execute emits the mapping as the node output. Template placeholders inside
// the mapping were already rendered against the execution context before the
// node ran, so the mapping arrives fully resolved.
func (n *Node) Execute(_ context.Context, _ *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	mapping := params["mapping"].(map[string]any)

	return models.SuccessOutput(mapping), nil
}

type Factory struct{}

func NewFactory(_ protocol.Dependencies) *Factory {
	return &Factory{}
}

func (f *Factory) Create() protocol.Node {
	return NewNode()
}

func (f *Factory) ID() string {
	return nodeType
}

func (f *Factory) Name() string {
	return "Transform"
}

func (f *Factory) Description() string {
	return "Builds a new object from a template mapping over upstream data"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mapping": map[string]any{
				"type":                 "object",
				"additionalProperties": true,
			},
		},
		"required": []any{"mapping"},
	}
}
