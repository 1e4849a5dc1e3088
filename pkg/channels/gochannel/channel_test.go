package gochannel

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChannel(t *testing.T) {
	t.Run("shared instance", func(t *testing.T) {
		pub, sub, err := CreateChannel(watermill.NopLogger{}, 0)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pub.Close() })

		assert.Same(t, pub, sub)
	})

	t.Run("negative buffer", func(t *testing.T) {
		pub, sub, err := CreateChannel(watermill.NopLogger{}, -1)
		assert.ErrorIs(t, err, ErrInvalidBufferSize)
		assert.Nil(t, pub)
		assert.Nil(t, sub)
	})

	t.Run("buffered publish does not wait for handlers", func(t *testing.T) {
		pub, sub, err := CreateChannel(watermill.NopLogger{}, 2)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pub.Close() })

		messages, err := sub.Subscribe(t.Context(), "flowmodel.test")
		require.NoError(t, err)

		require.NoError(t, pub.Publish("flowmodel.test",
			message.NewMessage(watermill.NewUUID(), []byte("a")),
			message.NewMessage(watermill.NewUUID(), []byte("b")),
		))

		var payloads []string

		for range 2 {
			msg := <-messages
			payloads = append(payloads, string(msg.Payload))
			msg.Ack()
		}

		assert.ElementsMatch(t, []string{"a", "b"}, payloads)
	})
}
