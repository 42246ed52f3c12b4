package requestlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(4)

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	e := NewEntry("orders", "GET", "/orders/1", 200, 5*time.Millisecond)
	b.Log(e)

	got1 := <-ch1
	got2 := <-ch2
	assert.Equal(t, e.ID, got1.ID)
	assert.Equal(t, e.ID, got2.ID)
	assert.Equal(t, "orders", got1.Service)
	assert.Equal(t, int64(5), got1.DurationMs)
}

func TestBroadcasterDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Second entry overflows the 1-slot buffer and must be dropped,
		// not block.
		b.Log(Entry{ID: "a"})
		b.Log(Entry{ID: "b"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Log blocked on a full subscriber")
	}
	assert.Equal(t, "a", (<-ch).ID)
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe()

	cancel()
	cancel() // idempotent

	_, open := <-ch
	require.False(t, open)

	// Logging after cancel must not panic.
	b.Log(Entry{ID: "x"})
}
