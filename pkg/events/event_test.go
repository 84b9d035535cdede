package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatTurnCompletedPayload(t *testing.T) {
	user := 4
	ev := ChatTurnCompleted(ChatTurn{
		TurnID:    "t-1",
		SessionID: "s-1",
		UserID:    &user,
		Transport: "http",
		Intent:    "filtered",
		BookIDs:   []int{42},
		Duration:  1500 * time.Millisecond,
	})

	assert.Equal(t, "CHAT_TURN_COMPLETED", ev.EventType())
	assert.Equal(t, "events.CHAT_TURN_COMPLETED", Subject(ev))
	assert.Equal(t, 4, ev.Payload()["user_id"])
	assert.Equal(t, []int{42}, ev.Payload()["book_ids"])
	assert.Equal(t, int64(1500), ev.Payload()["duration_ms"])

	anon := ChatTurnCompleted(ChatTurn{TurnID: "t-2"})
	assert.NotContains(t, anon.Payload(), "user_id")
	assert.Equal(t, []int{}, anon.Payload()["book_ids"])
}

func TestChannelBusDelivers(t *testing.T) {
	bus := NewChannelBus()
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received, err := bus.Subscribe(ctx, ChatTurnCompletedType)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, ChatTurnCompleted(ChatTurn{TurnID: "t-9", Truncated: true})))

	select {
	case ev := <-received:
		assert.Equal(t, ChatTurnCompletedType, ev.EventType())
		assert.Equal(t, "t-9", ev.Payload()["turn_id"])
		assert.Equal(t, true, ev.Payload()["truncated"])
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}
