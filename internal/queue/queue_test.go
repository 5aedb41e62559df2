package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollbook/internal/store"
)

func TestNotificationMessageRoundTrip(t *testing.T) {
	n := store.Notification{
		ID:        "8b9d8a2e-0000-4000-8000-000000000001",
		Lecturer:  "lect1012",
		Message:   "Medical submitted for R001 - Amara Silva | 2026-03-10 to 2026-03-12 | Subject: ALL | Adds +5% (max 100%).",
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	msg, err := NotificationMessage(n)
	require.NoError(t, err)
	assert.Equal(t, TypeNotification, msg.Type)

	got, err := DecodeNotification(msg)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: TypeNotification, Body: []byte("x")}))

	out, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-out:
		assert.Equal(t, TypeNotification, msg.Type)
		assert.Equal(t, []byte("x"), msg.Body)
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestInMemoryPublishNeverBlocksWhenFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(1)
	require.NoError(t, q.Publish(ctx, Message{Type: TypeNotification, Body: []byte("first")}))

	// buffer full and no consumer running: the overflow message must be
	// dropped immediately, not wedge the publishing request handler
	done := make(chan error, 1)
	go func() {
		done <- q.Publish(ctx, Message{Type: TypeNotification, Body: []byte("second")})
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrFull)
	case <-time.After(2 * time.Second):
		t.Fatal("publish on a full queue blocked")
	}

	// the buffered message is still there for a late consumer
	out, err := q.Consume(ctx)
	require.NoError(t, err)
	select {
	case msg := <-out:
		assert.Equal(t, []byte("first"), msg.Body)
	case <-time.After(time.Second):
		t.Fatal("buffered message never arrived")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeNotification, Body: []byte(`{"a":"b|c"}`)}
	got, err := deserialize(serialize(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}
