package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontera/pkg/requestcontext"
)

func TestPublisherStampsRequestMetadata(t *testing.T) {
	p := NewPublisher(4, nil)

	at := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithUserID(ctx, "TUR001")
	ctx = requestcontext.WithDevice(ctx, "Firefox on Linux")

	p.EmitRecord(ctx, "vehicles", "v-1", "created", "plate AB1234")

	select {
	case event := <-p.Events():
		assert.True(t, event.Timestamp.Equal(at))
		assert.Equal(t, "req-1", event.RequestID)
		assert.Equal(t, "TUR001", event.UserID)
		assert.Equal(t, "Firefox on Linux", event.Device)
		assert.Equal(t, "vehicles", event.Collection)
		assert.Equal(t, "v-1", event.RecordID)
		assert.Equal(t, "created", event.Action)
	default:
		t.Fatal("expected an event in the buffer")
	}
}

func TestPublisherExplicitUserWins(t *testing.T) {
	p := NewPublisher(4, nil)

	ctx := requestcontext.WithUserID(context.Background(), "someone-else")
	p.EmitAuth(ctx, "ADFU12", "login", "")

	event := <-p.Events()
	assert.Equal(t, "ADFU12", event.UserID)
	assert.Equal(t, "login", event.Action)
}

func TestPublisherDropsWhenFull(t *testing.T) {
	p := NewPublisher(1, nil)
	ctx := context.Background()

	p.EmitAuth(ctx, "u", "login", "")
	p.EmitAuth(ctx, "u", "logout", "") // buffer full, dropped

	require.Len(t, p.Events(), 1)
	event := <-p.Events()
	assert.Equal(t, "login", event.Action)
}

func TestWorkerDrainsClosedInbox(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(8, nil)
	w := NewWorker(store, p.Events(), nil)

	ctx := context.Background()
	p.EmitAuth(ctx, "u1", "login", "")
	p.EmitRecord(ctx, "minors", "m-1", "document_attached", "id_card")
	p.Close()

	require.NoError(t, w.Run(ctx))

	events, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "document_attached", events[0].Action)
	assert.Equal(t, "login", events[1].Action)
}
