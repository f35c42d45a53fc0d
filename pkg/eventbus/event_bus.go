// Package eventbus provides publish/subscribe distribution of execution
// lifecycle events.
package eventbus

import (
	"context"

	"github.com/cascadehq/cascade/pkg/events"
)

// EventPublisher publishes lifecycle events keyed by execution id.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event events.Event) error
}

// EventHandler consumes one decoded lifecycle event.
type EventHandler func(ctx context.Context, event any) error

// EventSubscriber registers handlers and starts the consume loop.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventBus combines publishing and subscribing over one transport.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
