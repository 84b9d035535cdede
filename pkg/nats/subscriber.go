package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"library-assistant-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc   *nats.Conn
	js   jetstream.JetStream
	cons []jetstream.ConsumeContext
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js}, nil
}

// Decode rebuilds an event from a JetStream message.
func Decode(subject string, header nats.Header, data []byte) (events.Event, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
	}

	eventType := header.Get(headerEventType)
	if eventType == "" {
		eventType = strings.TrimPrefix(subject, "events.")
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, header.Get(headerOccurredAt))
	if err != nil {
		occurredAt = time.Now().UTC()
	}

	return events.BaseEvent{Type: eventType, Data: payload, OccurredAt: occurredAt}, nil
}

// Subscribe registers a handler for a specific event subject pattern. An empty
// durableName creates an ephemeral consumer that only sees new events.
func (s *Subscriber) Subscribe(ctx context.Context, subject string, durableName string, handler EventHandler) error {
	cfg := jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	if durableName == "" {
		cfg.DeliverPolicy = jetstream.DeliverNewPolicy
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := Decode(msg.Subject(), msg.Headers(), msg.Data())
		if err != nil {
			log.Printf("Error decoding event on %s: %v", msg.Subject(), err)
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.cons = append(s.cons, cc)
	return nil
}

// Source exposes one durable consumer per event type as a channel.
type Source struct {
	sub     *Subscriber
	durable string
}

func (s *Subscriber) Source(durable string) *Source {
	return &Source{sub: s, durable: durable}
}

// Subscribe delivers events of eventType until ctx ends, then closes the channel.
// An event still being handed over when ctx ends is Nak'ed for redelivery.
func (src *Source) Subscribe(ctx context.Context, eventType string) (<-chan events.Event, error) {
	var (
		mu     sync.Mutex
		closed bool
	)
	out := make(chan events.Event, 16)

	durable := ""
	if src.durable != "" {
		durable = src.durable + "-" + strings.ToLower(eventType)
	}
	err := src.sub.Subscribe(ctx, events.SubjectFor(eventType), durable, func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return ctx.Err()
		}
		select {
		case out <- e:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()
	return out, nil
}

// Close stops every consumer and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.cons {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
