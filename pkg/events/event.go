package events

import (
	"context"
	"time"
)

const ChatTurnCompletedType = "CHAT_TURN_COMPLETED"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher delivers events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Subject is the bus subject an event is published on.
func Subject(e Event) string {
	return SubjectFor(e.EventType())
}

// SubjectFor is the bus subject carrying events of eventType.
func SubjectFor(eventType string) string {
	return "events." + eventType
}

type ChatTurn struct {
	TurnID    string
	SessionID string
	UserID    *int
	Transport string
	Intent    string
	Reused    bool
	BookIDs   []int
	Truncated bool
	Duration  time.Duration
}

// ChatTurnCompleted is published once per answered chat turn.
func ChatTurnCompleted(t ChatTurn) BaseEvent {
	bookIDs := t.BookIDs
	if bookIDs == nil {
		bookIDs = []int{}
	}
	data := map[string]interface{}{
		"turn_id":        t.TurnID,
		"session_id":     t.SessionID,
		"transport":      t.Transport,
		"intent":         t.Intent,
		"context_reused": t.Reused,
		"book_ids":       bookIDs,
		"truncated":      t.Truncated,
		"duration_ms":    t.Duration.Milliseconds(),
	}
	if t.UserID != nil {
		data["user_id"] = *t.UserID
	}
	return BaseEvent{Type: ChatTurnCompletedType, Data: data, OccurredAt: time.Now().UTC()}
}
