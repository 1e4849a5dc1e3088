package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowmodel/pkg/channels/gochannel"
	"github.com/dukex/flowmodel/pkg/channels/kafka"
	"github.com/dukex/flowmodel/pkg/eventbus"
)

// Event bus providers.
const (
	EventBusGoChannel = "gochannel"
	EventBusKafka     = "kafka"
)

// EventBusConfig selects and sizes the notification bus.
type EventBusConfig struct {
	Provider    string
	ServiceName string
	// Brokers is only read by kafka.
	Brokers []string
	// BufferSize is only read by gochannel; zero selects its default.
	BufferSize int
}

// NewEventBus builds the notification bus. gochannel keeps events in process;
// kafka needs at least one broker.
func NewEventBus(config EventBusConfig, logger *slog.Logger) (eventbus.EventBus, error) {
	adapter := watermill.NewSlogLogger(logger)

	switch config.Provider {
	case EventBusKafka:
		pub, sub, err := kafka.CreateChannel(adapter, config.ServiceName, config.Brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case EventBusGoChannel, "":
		pub, sub, err := gochannel.CreateChannel(adapter, config.BufferSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", config.Provider)
	}
}
