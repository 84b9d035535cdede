package service

import (
	"context"

	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/pkg/events"
)

// EventSource yields events of one type until its context ends.
type EventSource interface {
	Subscribe(ctx context.Context, eventType string) (<-chan events.Event, error)
}

type ITurnConsumerService interface {
	Consume(ctx context.Context) error
}

// turnConsumerService writes every completed chat turn to the audit log.
type turnConsumerService struct {
	source EventSource
	logger logger.ILogger
}

func NewTurnConsumerService(source EventSource, log logger.ILogger) ITurnConsumerService {
	return &turnConsumerService{source: source, logger: log}
}

func (cs *turnConsumerService) Consume(ctx context.Context) error {
	received, err := cs.source.Subscribe(ctx, events.ChatTurnCompletedType)
	if err != nil {
		return err
	}

	go func() {
		for ev := range received {
			cs.process(ev)
		}
	}()
	return nil
}

func (cs *turnConsumerService) process(ev events.Event) {
	details := make(map[string]interface{}, len(ev.Payload())+1)
	for k, v := range ev.Payload() {
		details[k] = v
	}
	details["occurred_at"] = ev.Timestamp()

	if truncated, _ := ev.Payload()["truncated"].(bool); truncated {
		cs.logger.Warn("EVENTS", "Chat turn ended early", details)
		return
	}
	cs.logger.Info("EVENTS", "Chat turn recorded", details)
}
