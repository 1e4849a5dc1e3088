package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/flowmodel/pkg/eventbus"
	"github.com/dukex/flowmodel/pkg/events"
)

// Auditor consumes every domain event and writes it to the audit log.
type Auditor struct {
	eventBus eventbus.EventBus
	logger   *slog.Logger

	mu     sync.Mutex
	counts map[events.EventType]int
}

func NewAuditor(eventBus eventbus.EventBus, logger *slog.Logger) *Auditor {
	return &Auditor{
		eventBus: eventBus,
		logger:   logger.With("module", "audit"),
		counts:   map[events.EventType]int{},
	}
}

// Start registers a handler per event type and subscribes in the background.
func (a *Auditor) Start(ctx context.Context) error {
	for _, eventType := range events.All() {
		if err := a.eventBus.Handle(eventType, a.handle); err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	if err := a.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "Subscribed to domain events", "event_types", len(events.All()))

	return nil
}

// Run blocks until ctx is done.
func (a *Auditor) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.logger.Info("Audit context cancelled, stopping...", "counts", a.Counts())

	return nil
}

func (a *Auditor) handle(ctx context.Context, event any) error {
	typed, ok := event.(eventbus.Event)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	a.mu.Lock()
	a.counts[typed.GetType()]++
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "Domain event", append([]any{"event_type", typed.GetType()}, attributes(event)...)...)

	return nil
}

// Counts returns how many events of each type were seen.
func (a *Auditor) Counts() map[events.EventType]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := make(map[events.EventType]int, len(a.counts))
	for eventType, count := range a.counts {
		counts[eventType] = count
	}

	return counts
}

func attributes(event any) []any {
	switch e := event.(type) {
	case *events.ModelCreated:
		return []any{"model_id", e.ModelID, "actor", e.Actor, "name", e.Name, "duplicated_from", e.DuplicatedFrom}
	case *events.ModelPublished:
		return []any{"model_id", e.ModelID, "version", e.Version, "warnings", len(e.Warnings)}
	case *events.ModelArchived:
		return []any{"model_id", e.ModelID}
	case *events.ModelDeleted:
		return []any{"model_id", e.ModelID, "deleted_by", e.DeletedBy}
	case *events.GraphValidated:
		return []any{"model_id", e.ModelID, "is_valid", e.IsValid}
	case *events.ReadinessEvaluated:
		return []any{"model_id", e.ModelID, "actor", e.Actor, "environment", e.Environment, "can_execute", e.CanExecute}
	case *events.LinkCreated:
		return []any{"model_id", e.ModelID, "link_id", e.LinkID, "type", e.LinkType}
	case *events.LinkDeleted:
		return []any{"model_id", e.ModelID, "link_id", e.LinkID}
	default:
		return nil
	}
}
