package kafka_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowmodel/pkg/channels/kafka"
	"github.com/dukex/flowmodel/pkg/eventbus"
	"github.com/dukex/flowmodel/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func startKafka(t *testing.T) []string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx := context.Background()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_CREATE_TOPICS": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	admin, err := sarama.NewClusterAdmin(brokers, sarama.NewConfig())
	require.NoError(t, err)

	defer func() { _ = admin.Close() }()

	err = admin.CreateTopic(events.Topic, &sarama.TopicDetail{NumPartitions: 1, ReplicationFactor: 1}, false)
	require.NoError(t, err)

	return brokers
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	brokers := startKafka(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "flowmodel-test", brokers)
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)

	defer func() { _ = bus.Close() }()

	received := make(chan *events.LinkCreated, 1)

	require.NoError(t, bus.Handle(events.LinkCreatedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.LinkCreated)

		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	created := events.LinkCreated{
		BaseEvent: events.NewBaseEvent(events.LinkCreatedEvent, ""),
		LinkID:    "link-1",
		Strength:  0.5,
	}
	require.NoError(t, bus.Publish(ctx, "link-1", created))

	select {
	case got := <-received:
		assert.Equal(t, "link-1", got.LinkID)
		assert.InDelta(t, 0.5, got.Strength, 1e-9)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
