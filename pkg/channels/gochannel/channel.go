// Package gochannel provides the in-memory event channel used for local runs and tests.
package gochannel

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultBufferSize is the per-subscriber buffer used when none is configured.
const DefaultBufferSize = 1000

var ErrInvalidBufferSize = errors.New("event buffer size cannot be negative")

// CreateChannel returns one GoChannel acting as both publisher and subscriber.
// Publishing never waits for handlers; once bufferSize events are queued for a
// subscriber, further publishes block. Zero selects DefaultBufferSize.
func CreateChannel(logger watermill.LoggerAdapter, bufferSize int) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	if bufferSize < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, bufferSize)
	}

	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: int64(bufferSize),
		},
		logger,
	)

	return pubSub, pubSub, nil
}

// CreateTestChannel keeps published messages and blocks until they are acknowledged.
func CreateTestChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            10,
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: true,
		},
		logger,
	)

	return pubSub, pubSub, nil
}
