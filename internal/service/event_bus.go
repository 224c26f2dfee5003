package service

import (
	"context"
	"fmt"

	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const ChatEventsTopic = "chat_events"

// ChannelBus is the in-process event bus used when no NATS server is
// configured. Events only reach subscribers of this process.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewChannelBus(pubSub *gochannel.GoChannel, topic string) *ChannelBus {
	return &ChannelBus{
		pubSub: pubSub,
		topic:  topic,
	}
}

func (b *ChannelBus) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("event_type", event.EventType())
	return b.pubSub.Publish(b.topic, msg)
}

// Subscribe feeds every event on the topic to handler until ctx ends.
func (b *ChannelBus) Subscribe(ctx context.Context, handler events.Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := events.Unmarshal(msg.Payload)
			if err != nil {
				// Redelivery cannot fix a broken payload.
				msg.Ack()
				continue
			}
			if err := handler(ctx, event); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *ChannelBus) Close() {
	_ = b.pubSub.Close()
}

// ActivityConsumer records chat activity from the domain event stream.
type ActivityConsumer struct {
	logger logger.ILogger
}

func NewActivityConsumer(log logger.ILogger) *ActivityConsumer {
	return &ActivityConsumer{logger: log}
}

func (c *ActivityConsumer) Handle(ctx context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()
	c.logger.Info("ACTIVITY", event.EventType(), details)
	return nil
}
