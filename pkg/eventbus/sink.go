package eventbus

import (
	"context"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/events"
)

// Sink adapts an EventPublisher into the engine's audit sink. Publish
// failures are logged and swallowed so a broken bus never fails a workflow.
type Sink struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func NewSink(publisher EventPublisher, logger *slog.Logger) *Sink {
	return &Sink{publisher: publisher, logger: logger}
}

func (s *Sink) Emit(ctx context.Context, key string, event events.Event) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"key", key,
			"event_type", string(event.GetType()),
			"error", err,
		)
	}
}
