// Package audit defines the audit sink contract the engine emits lifecycle
// events to.
package audit

import (
	"context"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/events"
)

// Sink receives execution lifecycle events. Emission is best-effort: sink
// failures must never influence execution correctness.
type Sink interface {
	Emit(ctx context.Context, key string, event events.Event)
}

// NoopSink discards all events.
type NoopSink struct{}

func (NoopSink) Emit(_ context.Context, _ string, _ events.Event) {}

// LogSink writes events to the structured logger. Useful for local runs
// without an event bus.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Emit(ctx context.Context, key string, event events.Event) {
	s.Logger.InfoContext(ctx, "audit event",
		"key", key,
		"event_type", string(event.GetType()),
	)
}
