// Package eventbus delivers flowmodel events to audit and notification consumers.
package eventbus

import (
	"context"

	"github.com/dukex/flowmodel/pkg/events"
)

// Event is implemented by every payload in package events.
type Event interface {
	GetType() events.EventType
}

// EventPublisher sends events. key is the model or link ID the event is about
// and travels in the message metadata.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber dispatches incoming events to the handler registered for
// their type. Events whose type has no handler are acknowledged and dropped.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event struct, e.g. *events.ModelPublished.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
