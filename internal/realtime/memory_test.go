package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestMemoryBroker_FanOut(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	defer b.Close()

	s1, err := b.Subscribe(ctx, "room-1")
	require.NoError(t, err)
	s2, err := b.Subscribe(ctx, "room-1")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "room-2")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, NewEvent("room-1", EventItemsUpdated)))

	assert.Equal(t, EventItemsUpdated, receive(t, s1).Kind)
	assert.Equal(t, "room-1", receive(t, s2).RoomID)
	assertNoEvent(t, other)
}

func TestMemoryBroker_Coalesces(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	defer b.Close()

	sub, err := b.Subscribe(ctx, "room-1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Publish(ctx, NewEvent("room-1", EventRoomUpdated)))
	}

	receive(t, sub)
	assertNoEvent(t, sub)
}

func TestMemoryBroker_Unsubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Subscribe(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers("room-1"))

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after context cancel")
	}
	assert.Eventually(t, func() bool { return b.Subscribers("room-1") == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, sub.Close())
	require.NoError(t, b.Publish(context.Background(), NewEvent("room-1", EventRoomUpdated)))
	assertNoEvent(t, sub)
}

func TestMemoryBroker_Close(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	sub, err := b.Subscribe(ctx, "room-1")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not closed with broker")
	}
	assert.ErrorIs(t, b.Publish(ctx, NewEvent("room-1", EventRoomUpdated)), ErrClosed)
	_, err = b.Subscribe(ctx, "room-1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewBroker(t *testing.T) {
	b, err := NewBroker(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBroker{}, b)

	_, err = NewBroker(Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestEventCodec(t *testing.T) {
	ev := NewEvent("room-1", EventRoomDeleted)
	data, err := encodeEvent(ev)
	require.NoError(t, err)
	got, err := decodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = decodeEvent([]byte("{"))
	assert.Error(t, err)
	assert.Equal(t, "splitroom:rooms.room-1", redisChannel("room-1"))
	assert.Equal(t, "splitroom.rooms.room-1", natsSubject("room-1"))
}
