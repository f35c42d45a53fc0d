// Package delay provides the node that pauses the workflow for a configured
// duration while honoring cancellation and the node deadline.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "delay"

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	seconds, err := durationSeconds(params)
	if err != nil {
		return err
	}

	if seconds <= 0 {
		return fmt.Errorf("delay node requires duration_seconds > 0")
	}

	return nil
}

// Execute sleeps for the configured duration. Cancellation or a deadline
// expiry interrupts the sleep and fails the node through ctx.
func (n *Node) Execute(ctx context.Context, execCtx *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	seconds, err := durationSeconds(params)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(seconds * float64(time.Second))

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	data := execCtx.PrimaryInput()
	if data == nil {
		data = map[string]any{}
	}

	return models.SuccessOutput(data), nil
}

func durationSeconds(params map[string]any) (float64, error) {
	switch typed := params["duration_seconds"].(type) {
	case float64:
		return typed, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	default:
		return 0, fmt.Errorf("delay node requires a numeric duration_seconds")
	}
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
	return "Delay"
}

func (f *Factory) Description() string {
	return "Pauses the workflow for a configured number of seconds"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration_seconds": map[string]any{
				"type":             "number",
				"exclusiveMinimum": 0,
			},
		},
		"required": []any{"duration_seconds"},
	}
}
