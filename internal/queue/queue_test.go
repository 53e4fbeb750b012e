package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Publish(ctx, Message{Type: TypeReconcile}))
	require.NoError(t, q.Publish(ctx, Message{Type: "other", Body: []byte("payload")}))

	first := <-msgs
	assert.Equal(t, TypeReconcile, first.Type)

	second := <-msgs
	assert.Equal(t, "other", second.Type)
	assert.Equal(t, "payload", string(second.Body))
}

func TestInMemoryConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewInMemory(1)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-msgs:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("consume channel did not close after cancel")
	}
}

func TestInMemoryPublishRespectsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewInMemory(1)

	require.NoError(t, q.Publish(ctx, Message{Type: TypeReconcile}))

	// queue is full and nobody is consuming
	cancel()
	err := q.Publish(ctx, Message{Type: TypeReconcile})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeReconcile, Body: []byte("student|proctor")}
	got, err := deserialize(serialize(msg))
	require.NoError(t, err)
	assert.Equal(t, msg.Type, got.Type)
	assert.Equal(t, string(msg.Body), string(got.Body))
}

func TestDeserializeWithoutSeparator(t *testing.T) {
	got, err := deserialize("naked")
	require.NoError(t, err)
	assert.Empty(t, got.Type)
	assert.Equal(t, "naked", string(got.Body))
}
