package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncPublisherAppendsImmediately(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	err := p.Emit(context.Background(), Event{
		Subject: "alice@example.edu",
		Action:  string(EventLoginSucceeded),
	})
	require.NoError(t, err)

	events := store.ListBySubject(context.Background(), "alice@example.edu")
	require.Len(t, events, 1)
	assert.Equal(t, string(EventLoginSucceeded), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp is stamped on emit")
}

func TestAsyncPublisherDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(16))

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Emit(context.Background(), Event{
			Subject:   "issuer@example.edu",
			Action:    string(EventProvenanceTraced),
			Timestamp: time.Now(),
		}))
	}
	p.Close()

	events := store.ListBySubject(context.Background(), "issuer@example.edu")
	assert.Len(t, events, 10)
}
