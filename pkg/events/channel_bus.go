package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	metadataType       = "event_type"
	metadataOccurredAt = "occurred_at"
)

// ChannelBus is the in-process bus used when no NATS server is configured.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

var _ Publisher = &ChannelBus{}

func NewChannelBus() *ChannelBus {
	return &ChannelBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *ChannelBus) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(metadataType, event.EventType())
	msg.Metadata.Set(metadataOccurredAt, event.Timestamp().Format(time.RFC3339Nano))

	if err := b.pubSub.Publish(Subject(event), msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
	}
	return nil
}

// Subscribe streams decoded events of the given type until ctx is done.
func (b *ChannelBus) Subscribe(ctx context.Context, eventType string) (<-chan Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, "events."+eventType)
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range messages {
			ev, err := decode(msg)
			msg.Ack()
			if err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func decode(msg *message.Message) (Event, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, msg.Metadata.Get(metadataOccurredAt))
	if err != nil {
		occurredAt = time.Now().UTC()
	}
	return BaseEvent{Type: msg.Metadata.Get(metadataType), Data: payload, OccurredAt: occurredAt}, nil
}

func (b *ChannelBus) Close() error {
	return b.pubSub.Close()
}
