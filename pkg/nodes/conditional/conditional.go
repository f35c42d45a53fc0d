// Package conditional provides the branching node. It resolves a field path
// against its input, compares the resolved value to a literal and routes to
// the "true" or "false" output port so edges can listen on either branch.
package conditional

import (
	"context"
	"fmt"

	"github.com/cascadehq/cascade/pkg/expression"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "conditional"

const (
	TrueLabel  = "true"
	FalseLabel = "false"
)

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	field, ok := params["field"].(string)
	if !ok || field == "" {
		return fmt.Errorf("conditional node requires a field path")
	}

	operator, ok := params["operator"].(string)
	if !ok || operator == "" {
		return fmt.Errorf("conditional node requires an operator")
	}

	if !expression.ValidOperator(operator) {
		return fmt.Errorf("unknown operator %q", operator)
	}

	if _, ok := params["value"]; !ok {
		return fmt.Errorf("conditional node requires a comparison value")
	}

	return nil
}

// Execute resolves field against the primary input, compares it to value and
// emits the verdict plus the input on the matching branch port. An
// unresolvable field or a comparison between incompatible types fails the
// node rather than silently picking a branch.
func (n *Node) Execute(_ context.Context, execCtx *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	field := params["field"].(string)
	operator := params["operator"].(string)

	input := execCtx.PrimaryInput()
	if input == nil {
		input = map[string]any{}
	}

	fieldValue, err := expression.ResolvePath(input, field)
	if err != nil {
		return nil, err
	}

	verdict, err := expression.Compare(fieldValue, operator, params["value"])
	if err != nil {
		return nil, err
	}

	label := FalseLabel
	if verdict {
		label = TrueLabel
	}

	return models.LabeledOutput(label, map[string]any{
		"result": verdict,
		"input":  input,
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
	return "Conditional"
}

func (f *Factory) Description() string {
	return "Routes the input to the true or false branch based on a comparison"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Path into the input, e.g. \"user.age\"",
			},
			"operator": map[string]any{
				"type": "string",
				"enum": []any{"eq", "ne", "gt", "lt", "gte", "lte", "contains"},
			},
			"value": map[string]any{
				"description": "Literal to compare the resolved field against",
			},
		},
		"required": []any{"field", "operator", "value"},
	}
}
