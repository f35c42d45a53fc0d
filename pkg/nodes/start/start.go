// Package start provides the entry node that hands the workflow input to
// downstream nodes.
package start

import (
	"context"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "start"

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(_ map[string]any) error {
	return nil
}

// Execute passes the original workflow input through unchanged.
func (n *Node) Execute(_ context.Context, execCtx *models.ExecutionContext, _ map[string]any) (*models.NodeOutput, error) {
	data := execCtx.Input
	if data == nil {
		data = map[string]any{}
	}

	return models.SuccessOutput(data), nil
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
	return "Start"
}

func (f *Factory) Description() string {
	return "Entry point that forwards the workflow input downstream"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
}
