package service

import (
	"context"
	"testing"
	"time"

	"realtime-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelBus_DeliversToSubscriber(t *testing.T) {
	bus := NewChannelBus(gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}), ChatEventsTopic)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Event, 1)
	require.NoError(t, bus.Subscribe(ctx, func(ctx context.Context, event events.Event) error {
		received <- event
		return nil
	}))

	require.NoError(t, bus.Publish(ctx, events.New(events.ChatRead, map[string]interface{}{"chat_id": "abc"})))

	select {
	case event := <-received:
		assert.Equal(t, events.ChatRead, event.EventType())
		assert.Equal(t, "abc", event.Payload()["chat_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
