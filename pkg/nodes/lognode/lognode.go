// Package lognode provides the node that emits a structured log line with a
// rendered message, useful for tracing data through a workflow.
package lognode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const nodeType = "log"

type Node struct {
	logger *slog.Logger
}

func NewNode(logger *slog.Logger) *Node {
	return &Node{logger: logger}
}

func (n *Node) Type() string {
	return nodeType
}

func (n *Node) ValidateParameters(params map[string]any) error {
	if _, ok := params["message"]; !ok {
		return fmt.Errorf("log node requires a message")
	}

	if level, ok := params["level"].(string); ok {
		switch level {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("unknown log level %q", level)
		}
	}

	return nil
}

// Execute logs the rendered message and passes the primary input through so
// the node can sit inline on any edge.
func (n *Node) Execute(ctx context.Context, execCtx *models.ExecutionContext, params map[string]any) (*models.NodeOutput, error) {
	message := fmt.Sprintf("%v", params["message"])

	level := slog.LevelInfo
	if configured, ok := params["level"].(string); ok {
		switch configured {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	n.logger.Log(ctx, level, message,
		"execution_id", execCtx.ExecutionID,
		"node_id", execCtx.NodeID,
	)

	data := execCtx.PrimaryInput()
	if data == nil {
		data = map[string]any{}
	}

	return models.SuccessOutput(data), nil
}

type Factory struct {
	deps protocol.Dependencies
}

func NewFactory(deps protocol.Dependencies) *Factory {
	return &Factory{deps: deps}
}

func (f *Factory) Create() protocol.Node {
	return NewNode(f.deps.Logger)
}

func (f *Factory) ID() string {
	return nodeType
}

func (f *Factory) Name() string {
	return "Log"
}

func (f *Factory) Description() string {
	return "Logs a rendered message and forwards its input"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"description": "Message to log, may contain template placeholders",
			},
			"level": map[string]any{
				"type": "string",
				"enum": []any{"debug", "info", "warn", "error"},
			},
		},
		"required": []any{"message"},
	}
}
