package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukex/flowmodel/pkg/eventbus"
	"github.com/dukex/flowmodel/pkg/otelhelper"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/dukex/flowmodel/pkg/readiness"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options carries the collaborators shared by every service. Zero values are usable:
// a nil Publisher drops events, a nil Tracer records nothing and a nil Logger discards output.
type Options struct {
	Publisher          eventbus.EventPublisher
	Tracer             trace.Tracer
	Logger             *slog.Logger
	Readiness          readiness.Options
	DefaultEnvironment string
}

type base struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
	locks       *keyedMutex
}

func newBase(p persistence.Persistence, opts Options, module string) base {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("flowmodel")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return base{
		persistence: p,
		publisher:   opts.Publisher,
		tracer:      tracer,
		logger:      logger.With("module", module),
		locks:       newKeyedMutex(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (b *base) HealthCheck(ctx context.Context) (string, bool) {
	if b.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := b.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// nolint:spancheck // callers end the span
func (b *base) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, b.tracer, name, attrs...)
}

// fail classifies err for op and records it on the span.
func fail(span trace.Span, op string, err error) error {
	err = classify(op, err)

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		otelhelper.SetError(span, err, serviceErr.Code)
	} else {
		otelhelper.SetError(span, err, "")
	}

	return err
}

// publish emits an event keyed by the aggregate ID. Delivery failures are
// logged; the operation that produced the event has already been persisted.
func (b *base) publish(ctx context.Context, key string, event eventbus.Event) {
	if b.publisher == nil {
		return
	}

	if err := b.publisher.Publish(ctx, key, event); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(),
			"key", key,
			"error", err)
	}
}

// keyedMutex serializes read-modify-write cycles on the same aggregate.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*keyedLock{}}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()

	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}

	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		defer k.mu.Unlock()

		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
	}
}
