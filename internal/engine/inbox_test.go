package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxFIFO(t *testing.T) {
	q := newInbox()

	a := &envelope{cmd: Command{Kind: CmdAddItem, ProductID: "a"}}
	b := &envelope{cmd: Command{Kind: CmdAddItem, ProductID: "b"}}
	require.True(t, q.Enqueue(a))
	require.True(t, q.Enqueue(b))
	assert.Equal(t, 2, q.Len())

	got, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Same(t, a, got)

	got, ok = q.TryDequeue()
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestInboxSignalCoalesces(t *testing.T) {
	q := newInbox()

	q.Enqueue(&envelope{})
	q.Enqueue(&envelope{})
	q.Enqueue(&envelope{})

	// Multiple enqueues collapse into one pending signal; the consumer drains
	// the queue after each wake.
	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestInboxCloseRejectsEnqueueAndWakesWaiter(t *testing.T) {
	q := newInbox()
	q.Close()

	assert.False(t, q.Enqueue(&envelope{}))

	// The closed signal channel is always ready.
	select {
	case <-q.Wait():
	default:
		t.Fatal("waiter not woken by Close")
	}

	// Closing twice is safe.
	q.Close()
}
