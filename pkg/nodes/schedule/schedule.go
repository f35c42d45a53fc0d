// Package schedule provides the node that evaluates a cron expression and
// exposes upcoming fire times, letting workflows branch on schedule windows.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "schedule"

const (
	defaultCount = 1
	maxCount     = 50
)

var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Node struct{}

func NewNode() *Node {
	return &Node{}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	expr, ok := params["cron"].(string)
	if !ok || expr == "" {
		return fmt.Errorf("schedule node requires a cron expression")
	}

	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	return nil
}

// Execute returns the next fire times of the cron expression in RFC 3339,
// plus the seconds until the first one.
func (n *Node) Execute(_ context.Context, _ *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	expr := params["cron"].(string)

	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	count := defaultCount
	if requested, ok := params["count"].(float64); ok && requested > 0 {
		count = int(requested)
		if count > maxCount {
			count = maxCount
		}
	}

	now := time.Now().UTC()
	next := make([]any, 0, count)

	cursor := now
	for range count {
		cursor = sched.Next(cursor)
		next = append(next, cursor.Format(time.RFC3339))
	}

	first := sched.Next(now)

	return models.SuccessOutput(map[string]any{
		"cron":          expr,
		"next":          next,
		"seconds_until": int64(time.Until(first).Seconds()),
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
	return "Schedule"
}

func (f *Factory) Description() string {
	return "Evaluates a cron expression and exposes upcoming fire times"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cron": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"count": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": maxCount,
			},
		},
		"required": []any{"cron"},
	}
}
