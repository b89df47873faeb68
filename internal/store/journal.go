// Package store provides the durable event journal for cart instances.
//
// Every decision an instance takes - applied commands with their resolved
// inputs, notifications, checkout outcomes, the terminal transition - is
// appended as one Event. Because events record resolved inputs (product
// snapshot, timestamp, generated ids) rather than references, Rebuild can fold
// a journal back into the exact Order without consulting the catalog, the
// wall clock, or any randomness.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// EventKind identifies what a journal event records.
type EventKind string

const (
	// EventCartCreated opens a cart's journal. Carries the generated order id.
	EventCartCreated EventKind = "cart_created"
	// EventCommandApplied records a command together with its resolved effect.
	EventCommandApplied EventKind = "command_applied"
	// EventCommandRejected records a command that was refused (frozen cart,
	// invalid quantity). The record was not touched.
	EventCommandRejected EventKind = "command_rejected"
	// EventNotificationSent records an outbound user notification.
	EventNotificationSent EventKind = "notification_sent"
	// EventCheckoutResolved records the classified outcome of the checkout
	// activity invocation.
	EventCheckoutResolved EventKind = "checkout_resolved"
	// EventRunFinished closes a cart's journal with its terminal outcome.
	EventRunFinished EventKind = "run_finished"
)

// Operations recorded in Command.Op. These name the effect that was applied,
// not the inbound command, so rebuild needs no knowledge of engine
// configuration (append vs merge mode, validation toggles).
const (
	OpAppendItem  = "append_item"
	OpMergeItem   = "merge_item"
	OpRemoveItem  = "remove_item"
	OpSetQuantity = "set_quantity"
	OpCheckout    = "checkout"
)

// Created carries the identifiers fixed at cart creation.
type Created struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

// Command carries an applied (or rejected) command with the product data it
// resolved against.
type Command struct {
	Op        string  `json:"op"`
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	Reason    string  `json:"reason,omitempty"` // set on rejections only
}

// Notification carries an outbound message.
type Notification struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Outcome carries a checkout resolution or a terminal run result. Exactly one
// of Status and Err is meaningful for fatal failures; both may be set when a
// classified failure produced an Error status.
type Outcome struct {
	Status string `json:"status,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Event is one journal entry. Seq comes from the engine's logical clock and
// is strictly increasing per cart.
type Event struct {
	CartID       string        `json:"cartId"`
	Seq          int64         `json:"seq"`
	Kind         EventKind     `json:"kind"`
	At           time.Time     `json:"at"`
	Created      *Created      `json:"created,omitempty"`
	Command      *Command      `json:"command,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Outcome      *Outcome      `json:"outcome,omitempty"`
}

// Summary renders the event's payload as one line of human-readable text.
// Used by the CLI trace output and by golden trace files; timestamps and cart
// id are deliberately omitted so the text is stable under fixed generators.
func (ev Event) Summary() string {
	switch {
	case ev.Created != nil:
		return fmt.Sprintf("order=%s user=%s", ev.Created.OrderID, ev.Created.UserID)
	case ev.Command != nil && ev.Command.Reason != "":
		return fmt.Sprintf("%s %s (%s)", ev.Command.Op, ev.Command.ProductID, ev.Command.Reason)
	case ev.Command != nil && ev.Command.ProductID != "":
		return fmt.Sprintf("%s %s x%d", ev.Command.Op, ev.Command.ProductID, ev.Command.Quantity)
	case ev.Command != nil:
		return ev.Command.Op
	case ev.Notification != nil:
		return fmt.Sprintf("%q -> %s", ev.Notification.Message, ev.Notification.UserID)
	case ev.Outcome != nil && ev.Outcome.Err != "":
		return fmt.Sprintf("status=%s error=%s", ev.Outcome.Status, ev.Outcome.Err)
	case ev.Outcome != nil:
		return "status=" + ev.Outcome.Status
	}
	return ""
}

// Journal is an append-only per-cart event log.
//
// Append must be safe for concurrent use across carts. Events returns a
// cart's entries in seq order.
type Journal interface {
	Append(ctx context.Context, ev Event) error
	Events(ctx context.Context, cartID string) ([]Event, error)
	Close() error
}

// Memory is an in-process Journal for tests and the demo command.
type Memory struct {
	mu     sync.Mutex
	events map[string][]Event
}

// NewMemory creates an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{events: make(map[string][]Event)}
}

// Append adds ev to the cart's log. Duplicate (cart, seq) pairs are ignored,
// mirroring the idempotent SQLite writes.
func (m *Memory) Append(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.events[ev.CartID] {
		if existing.Seq == ev.Seq {
			return nil
		}
	}
	m.events[ev.CartID] = append(m.events[ev.CartID], ev)
	return nil
}

// Events returns the cart's entries sorted by seq.
func (m *Memory) Events(_ context.Context, cartID string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events[cartID]))
	copy(out, m.events[cartID])
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Close implements Journal. It is a no-op for the in-memory journal.
func (m *Memory) Close() error { return nil }
