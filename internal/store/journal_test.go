package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleEvents(cartID string) []Event {
	return []Event{
		{
			CartID:  cartID,
			Seq:     1,
			Kind:    EventCartCreated,
			At:      at,
			Created: &Created{OrderID: "order-1", UserID: "alice"},
		},
		{
			CartID:  cartID,
			Seq:     2,
			Kind:    EventCommandApplied,
			At:      at.Add(time.Second),
			Command: &Command{Op: OpAppendItem, ProductID: "Espresso", Name: "Espresso from Columbia", Price: 1, Quantity: 1},
		},
		{
			CartID:       cartID,
			Seq:          3,
			Kind:         EventNotificationSent,
			At:           at.Add(2 * time.Second),
			Notification: &Notification{UserID: "alice", Message: "Thank you for your order."},
		},
	}
}

// journals under test share one behavioral contract.
func runJournalContract(t *testing.T, j Journal) {
	ctx := context.Background()

	for _, ev := range sampleEvents("cart-alice") {
		require.NoError(t, j.Append(ctx, ev))
	}
	// A second cart's events stay separate.
	require.NoError(t, j.Append(ctx, Event{
		CartID:  "cart-bob",
		Seq:     4,
		Kind:    EventCartCreated,
		At:      at,
		Created: &Created{OrderID: "order-2", UserID: "bob"},
	}))

	events, err := j.Events(ctx, "cart-alice")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventCartCreated, events[0].Kind)
	assert.Equal(t, "order-1", events[0].Created.OrderID)
	assert.Equal(t, OpAppendItem, events[1].Command.Op)
	assert.Equal(t, "Thank you for your order.", events[2].Notification.Message)

	// Duplicate (cart, seq) appends are ignored.
	dup := sampleEvents("cart-alice")[1]
	dup.Command = &Command{Op: OpRemoveItem, ProductID: "Espresso"}
	require.NoError(t, j.Append(ctx, dup))
	events, err = j.Events(ctx, "cart-alice")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, OpAppendItem, events[1].Command.Op, "first write wins")

	// Unknown carts have an empty journal, not an error.
	events, err = j.Events(ctx, "cart-nobody")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventSummary(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "created",
			ev:   Event{Created: &Created{OrderID: "order-1", UserID: "alice"}},
			want: "order=order-1 user=alice",
		},
		{
			name: "applied",
			ev:   Event{Command: &Command{Op: OpAppendItem, ProductID: "Espresso", Quantity: 1}},
			want: "append_item Espresso x1",
		},
		{
			name: "rejected",
			ev:   Event{Command: &Command{Op: "add_item", ProductID: "Latte", Reason: "unknown product"}},
			want: "add_item Latte (unknown product)",
		},
		{
			name: "checkout",
			ev:   Event{Command: &Command{Op: OpCheckout}},
			want: "checkout",
		},
		{
			name: "notification",
			ev:   Event{Notification: &Notification{UserID: "alice", Message: "hi"}},
			want: `"hi" -> alice`,
		},
		{
			name: "outcome",
			ev:   Event{Outcome: &Outcome{Status: "SUCCESS"}},
			want: "status=SUCCESS",
		},
		{
			name: "outcome with error",
			ev:   Event{Outcome: &Outcome{Status: "ERROR", Err: "boom"}},
			want: "status=ERROR error=boom",
		},
		{
			name: "empty",
			ev:   Event{Kind: EventRunFinished},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.Summary())
		})
	}
}

func TestMemoryJournal(t *testing.T) {
	j := NewMemory()
	defer j.Close()
	runJournalContract(t, j)
}

func TestSQLiteJournal(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()
	runJournalContract(t, j)
}

func TestSQLite_ReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	for _, ev := range sampleEvents("cart-alice") {
		require.NoError(t, j.Append(ctx, ev))
	}
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	events, err := j.Events(ctx, "cart-alice")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestSQLite_EventTimesSurviveRoundTrip(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	ev := sampleEvents("cart-alice")[0]
	require.NoError(t, j.Append(context.Background(), ev))

	events, err := j.Events(context.Background(), "cart-alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].At.Equal(ev.At), "want %v, got %v", ev.At, events[0].At)
}
