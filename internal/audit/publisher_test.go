package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherSyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action: ActionRecordMinted,
		Actor:  "0xminter",
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionRecordMinted, events[0].Action)
	assert.NotZero(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisherAsyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), Event{
		Action: ActionRoleGranted,
		Actor:  "0xadmin",
	})
	require.NoError(t, err)

	// Close flushes the buffer, so every emitted event must be visible after.
	pub.Close()

	events, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionRoleGranted, events[0].Action)
}

func TestPublisherFullBufferFallsBackToSync(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	for i := 0; i < 20; i++ {
		require.NoError(t, pub.Emit(context.Background(), Event{
			Action: ActionRecordMinted,
			Actor:  "0xminter",
		}))
	}

	// All events land, whether they went through the buffer or inline.
	deadline := time.Now().Add(2 * time.Second)
	for {
		events, err := pub.List(context.Background())
		require.NoError(t, err)
		if len(events) == 20 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 20 events, got %d", len(events))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
