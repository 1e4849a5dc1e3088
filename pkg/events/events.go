// Package events defines the notification and audit events emitted by function model and link operations.
package events

import (
	"time"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every flowmodel event.
const Topic = "flowmodel.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Model lifecycle events.
	ModelCreatedEvent   EventType = "model.created"
	ModelPublishedEvent EventType = "model.published"
	ModelArchivedEvent  EventType = "model.archived"
	ModelDeletedEvent   EventType = "model.deleted"

	// Validation outcomes.
	GraphValidatedEvent     EventType = "graph.validated"
	ReadinessEvaluatedEvent EventType = "readiness.evaluated"

	// Cross-feature link events.
	LinkCreatedEvent EventType = "link.created"
	LinkDeletedEvent EventType = "link.deleted"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ModelID   string         `json:"model_id,omitempty"`
	Actor     string         `json:"actor,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a new event with a time-ordered identifier.
func NewBaseEvent(eventType EventType, modelID string) BaseEvent {
	return BaseEvent{
		ID:        newEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ModelID:   modelID,
		Metadata:  map[string]any{},
	}
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

type ModelCreated struct {
	BaseEvent

	Name           string `json:"name"`
	Owner          string `json:"owner"`
	DuplicatedFrom string `json:"duplicated_from,omitempty"`
}

func (e ModelCreated) GetType() EventType {
	return ModelCreatedEvent
}

type ModelPublished struct {
	BaseEvent

	Version  int      `json:"version"`
	Warnings []string `json:"warnings,omitempty"`
}

func (e ModelPublished) GetType() EventType {
	return ModelPublishedEvent
}

type ModelArchived struct {
	BaseEvent
}

func (e ModelArchived) GetType() EventType {
	return ModelArchivedEvent
}

type ModelDeleted struct {
	BaseEvent

	DeletedBy string `json:"deleted_by"`
}

func (e ModelDeleted) GetType() EventType {
	return ModelDeletedEvent
}

// GraphValidated reports the outcome of a graph validation run, whether or not it passed.
type GraphValidated struct {
	BaseEvent

	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (e GraphValidated) GetType() EventType {
	return GraphValidatedEvent
}

// ReadinessEvaluated reports the outcome of an execution readiness check.
type ReadinessEvaluated struct {
	BaseEvent

	Environment string                      `json:"environment,omitempty"`
	CanExecute  bool                        `json:"can_execute"`
	Errors      []string                    `json:"errors,omitempty"`
	Warnings    []string                    `json:"warnings,omitempty"`
	Totals      models.ResourceRequirements `json:"totals"`
}

func (e ReadinessEvaluated) GetType() EventType {
	return ReadinessEvaluatedEvent
}

type LinkCreated struct {
	BaseEvent

	LinkID   string              `json:"link_id"`
	Source   models.LinkEndpoint `json:"source"`
	Target   models.LinkEndpoint `json:"target"`
	LinkType models.LinkType     `json:"link_type"`
	Strength float64             `json:"strength"`
}

func (e LinkCreated) GetType() EventType {
	return LinkCreatedEvent
}

type LinkDeleted struct {
	BaseEvent

	LinkID string `json:"link_id"`
}

func (e LinkDeleted) GetType() EventType {
	return LinkDeletedEvent
}

// New returns an empty event value for decoding a payload of the given type.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case ModelCreatedEvent:
		return &ModelCreated{}, true
	case ModelPublishedEvent:
		return &ModelPublished{}, true
	case ModelArchivedEvent:
		return &ModelArchived{}, true
	case ModelDeletedEvent:
		return &ModelDeleted{}, true
	case GraphValidatedEvent:
		return &GraphValidated{}, true
	case ReadinessEvaluatedEvent:
		return &ReadinessEvaluated{}, true
	case LinkCreatedEvent:
		return &LinkCreated{}, true
	case LinkDeletedEvent:
		return &LinkDeleted{}, true
	default:
		return nil, false
	}
}

// All lists every event type in a stable order.
func All() []EventType {
	return []EventType{
		ModelCreatedEvent,
		ModelPublishedEvent,
		ModelArchivedEvent,
		ModelDeletedEvent,
		GraphValidatedEvent,
		ReadinessEvaluatedEvent,
		LinkCreatedEvent,
		LinkDeletedEvent,
	}
}
