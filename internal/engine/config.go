package engine

import (
	"time"

	"github.com/roach88/cartflow/internal/activity"
	"github.com/roach88/cartflow/internal/catalog"
	"github.com/roach88/cartflow/internal/store"
)

// Timeouts are the escalating deadlines of a cart run: a soft reminder, a
// cancellation deadline, and a maximum-processing deadline.
//
// Reminder and Cancel are measured from cart creation, so the cancellation
// point is absolute regardless of when the reminder resolved. MaxProcessing
// bounds the final wait from the moment checkout is known to be in flight.
type Timeouts struct {
	Reminder      time.Duration
	Cancel        time.Duration
	MaxProcessing time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Reminder <= 0 {
		t.Reminder = 15 * time.Second
	}
	if t.Cancel <= 0 {
		t.Cancel = 30 * time.Second
	}
	if t.MaxProcessing <= 0 {
		t.MaxProcessing = 5 * time.Minute
	}
	return t
}

// Config wires an Engine's collaborators and policies. The zero value of
// every field is a usable default, so tests configure only what they assert
// on.
type Config struct {
	// Catalog is the read-only product mapping commands resolve against.
	// Defaults to catalog.Default().
	Catalog catalog.Catalog

	// Checkout resolves an order snapshot to an outcome. Defaults to the
	// production checkout activity.
	Checkout activity.CheckoutFunc

	// Notifier delivers user-facing messages. Defaults to the log-backed
	// notifier.
	Notifier activity.Notifier

	// IDs generates order identifiers. Defaults to UUIDs.
	IDs activity.IDGenerator

	// Journal receives the durable event log. Defaults to an in-memory
	// journal.
	Journal store.Journal

	// Timeouts configures the three cart deadlines.
	Timeouts Timeouts

	// Retry is the checkout invocation policy. The zero value yields the
	// activity package defaults (2 attempts, 2s initial interval, 1 minute
	// per attempt).
	Retry activity.RetryPolicy

	// AllowEditsDuringCheckout permits item mutations after checkout has
	// started. Off by default: once the status leaves Open the cart contents
	// are frozen.
	AllowEditsDuringCheckout bool

	// AllowNonPositiveQuantity permits UpdateQuantity with quantity < 1.
	// Off by default: such commands are rejected as no-ops.
	AllowNonPositiveQuantity bool

	// MergeDuplicateLines makes AddItem fold into an existing line instead of
	// appending a second line for the same product. Off by default: Add
	// always appends.
	MergeDuplicateLines bool
}

func (c Config) withDefaults() Config {
	if c.Catalog.Len() == 0 {
		c.Catalog = catalog.Default()
	}
	if c.Checkout == nil {
		c.Checkout = activity.NewCheckout().Resolve
	}
	if c.Notifier == nil {
		c.Notifier = activity.LogNotifier{}
	}
	if c.IDs == nil {
		c.IDs = activity.UUIDGenerator{}
	}
	if c.Journal == nil {
		c.Journal = store.NewMemory()
	}
	c.Timeouts = c.Timeouts.withDefaults()
	return c
}
