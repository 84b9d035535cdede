package nats

import (
	"os"
	"testing"

	"library-assistant-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUsesHeaders(t *testing.T) {
	header := nats.Header{}
	header.Set(headerEventType, events.ChatTurnCompletedType)
	header.Set(headerOccurredAt, "2026-01-02T03:04:05Z")

	ev, err := Decode("events.CHAT_TURN_COMPLETED", header, []byte(`{"turn_id":"t-1"}`))
	require.NoError(t, err)
	assert.Equal(t, events.ChatTurnCompletedType, ev.EventType())
	assert.Equal(t, "t-1", ev.Payload()["turn_id"])
	assert.Equal(t, 2026, ev.Timestamp().Year())
}

func TestDecodeFallsBackToSubject(t *testing.T) {
	ev, err := Decode("events.CHAT_TURN_COMPLETED", nats.Header{}, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "CHAT_TURN_COMPLETED", ev.EventType())

	_, err = Decode("events.X", nats.Header{}, []byte(`not json`))
	assert.Error(t, err)
}

func TestNewPublisherUnreachable(t *testing.T) {
	if os.Getenv("NATS_URL") != "" {
		t.Skip("NATS_URL set; unreachable-server check not meaningful")
	}
	_, err := NewPublisher("nats://127.0.0.1:1")
	assert.Error(t, err)
}
