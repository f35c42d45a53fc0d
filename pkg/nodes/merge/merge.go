// Package merge provides the fan-in node that combines the outputs of
// several predecessors into one object.
package merge

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "merge"

const (
	strategyShallow = "shallow"
	strategyNested  = "nested"
)

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	if strategy, ok := params["strategy"].(string); ok {
		switch strategy {
		case "", strategyShallow, strategyNested:
		default:
			return fmt.Errorf("unknown merge strategy %q", strategy)
		}
	}

	return nil
}

// Execute combines all inbound inputs. The shallow strategy flattens every
// input into one object with later input keys winning; nested keeps each
// input under its inbound label. Input keys are walked in sorted order so
// the shallow result is deterministic.
func (n *Node) Execute(_ context.Context, execCtx *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	strategy := strategyShallow
	if configured, ok := params["strategy"].(string); ok && configured != "" {
		strategy = configured
	}

	if strategy == strategyNested {
		data := make(map[string]any, len(execCtx.Inputs))
		for label, input := range execCtx.Inputs {
			data[label] = input
		}

		return models.SuccessOutput(data), nil
	}

	data := make(map[string]any)
	for _, label := range slices.Sorted(maps.Keys(execCtx.Inputs)) {
		maps.Copy(data, execCtx.Inputs[label])
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
	return "Merge"
}

func (f *Factory) Description() string {
	return "Combines the outputs of several predecessors into one object"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"strategy": map[string]any{
				"type": "string",
				"enum": []any{"shallow", "nested"},
			},
		},
	}
}
