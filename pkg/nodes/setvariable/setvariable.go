// Package setvariable provides the node that writes a value into the
// execution-scoped variable store.
package setvariable

import (
	"context"
	"fmt"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "set_variable"

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return fmt.Errorf("set_variable node requires a non-empty name")
	}

	if _, ok := params["value"]; !ok {
		return fmt.Errorf("set_variable node requires a value")
	}

	return nil
}

// Execute stores the rendered value under the given name. Concurrent writers
// to the same name within one execution follow last-write-wins.
func (n *Node) Execute(_ context.Context, execCtx *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	name := params["name"].(string)
	value := params["value"]

	execCtx.Variables.Set(name, value)

	return models.SuccessOutput(map[string]any{
		"name":  name,
		"value": value,
	}), nil
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
	return "Set Variable"
}

func (f *Factory) Description() string {
	return "Writes a value into the shared execution variable store"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"value": map[string]any{
				"description": "Value to store, may be any JSON type",
			},
		},
		"required": []any{"name", "value"},
	}
}
