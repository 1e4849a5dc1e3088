package main

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowmodel/pkg/channels/gochannel"
	"github.com/dukex/flowmodel/pkg/eventbus"
	"github.com/dukex/flowmodel/pkg/events"
	"github.com/dukex/flowmodel/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestAuditor_LogsEveryEvent(t *testing.T) {
	out := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(out, nil))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { _ = bus.Close() })

	auditor := NewAuditor(bus, logger)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, auditor.Start(ctx))

	deleted := events.ModelDeleted{
		BaseEvent: events.NewBaseEvent(events.ModelDeletedEvent, "model-1"),
		DeletedBy: "bob",
	}
	created := events.LinkCreated{
		BaseEvent: events.NewBaseEvent(events.LinkCreatedEvent, "model-1"),
		LinkID:    "link-1",
	}

	require.NoError(t, bus.Publish(ctx, "model-1", deleted))
	require.NoError(t, bus.Publish(ctx, "link-1", created))

	require.Eventually(t, func() bool {
		counts := auditor.Counts()

		return counts[events.ModelDeletedEvent] == 1 && counts[events.LinkCreatedEvent] == 1
	}, 5*time.Second, 10*time.Millisecond)

	logs := out.String()
	assert.Contains(t, logs, `"deleted_by":"bob"`)
	assert.Contains(t, logs, `"link_id":"link-1"`)
	assert.Contains(t, logs, `"event_type":"model.deleted"`)
}

func TestAuditor_RegistersAllEventTypes(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Handle", mock.Anything, mock.Anything).Return(nil)
	bus.On("Subscribe", mock.Anything).Return(nil)

	auditor := NewAuditor(bus, slog.New(slog.DiscardHandler))
	require.NoError(t, auditor.Start(t.Context()))

	for _, eventType := range events.All() {
		bus.AssertCalled(t, "Handle", eventType, mock.Anything)
	}

	bus.AssertNumberOfCalls(t, "Subscribe", 1)
}

func TestAuditor_RejectsUnknownPayload(t *testing.T) {
	auditor := NewAuditor(&mocks.MockEventBus{}, slog.New(slog.DiscardHandler))

	err := auditor.handle(t.Context(), "not an event")
	require.Error(t, err)
	assert.Empty(t, auditor.Counts())
}
