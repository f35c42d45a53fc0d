package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/channels/gochannel"
	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/events"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	received := make(chan *events.ExecutionCompleted, 1)

	err := bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, event any) error {
		completed, ok := event.(*events.ExecutionCompleted)
		require.True(t, ok)
		received <- completed

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	sent := events.ExecutionCompleted{
		BaseEvent: events.BaseEvent{
			ID:          bus.GenerateID(),
			Type:        events.ExecutionCompletedEvent,
			Timestamp:   time.Now().UTC(),
			WorkflowID:  "wf-orders",
			ExecutionID: "exec-1",
		},
		OutputData: map[string]any{"done": true},
		Duration:   2 * time.Second,
	}

	require.NoError(t, bus.Publish(ctx, "exec-1", sent))

	select {
	case got := <-received:
		assert.Equal(t, "exec-1", got.ExecutionID)
		assert.Equal(t, "wf-orders", got.WorkflowID)
		assert.Equal(t, map[string]any{"done": true}, got.OutputData)
	case <-time.After(5 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestUnhandledEventTypesAreDropped(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	received := make(chan any, 2)

	err := bus.Handle(events.NodeFailedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for node.started: it must be acked and dropped
	// without blocking the one we do care about.
	require.NoError(t, bus.Publish(ctx, "exec-1", events.NodeStarted{
		BaseEvent: events.BaseEvent{ExecutionID: "exec-1"},
		NodeID:    "entry",
	}))
	require.NoError(t, bus.Publish(ctx, "exec-1", events.NodeFailed{
		BaseEvent: events.BaseEvent{ExecutionID: "exec-1"},
		NodeID:    "enrich",
		Error:     "boom",
	}))

	select {
	case event := <-received:
		failed, ok := event.(*events.NodeFailed)
		require.True(t, ok)
		assert.Equal(t, "enrich", failed.NodeID)
		assert.Equal(t, "boom", failed.Error)
	case <-time.After(5 * time.Second):
		t.Fatal("event never arrived")
	}

	assert.Empty(t, received)
}

func TestGenerateID(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
