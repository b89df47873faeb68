// Package testutil provides deterministic stand-ins for the engine's
// external collaborators.
package testutil

import (
	"context"
	"sync"
)

// Notification is one recorded notifier call.
type Notification struct {
	UserID  string
	Message string
}

// Notifications implements activity.Notifier and records every delivery in
// order. Safe for concurrent use.
type Notifications struct {
	mu   sync.Mutex
	sent []Notification
}

// NewNotifications creates an empty recorder.
func NewNotifications() *Notifications {
	return &Notifications{}
}

// Notify records the call and always succeeds.
func (n *Notifications) Notify(_ context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{UserID: userID, Message: message})
	return nil
}

// Sent returns all recorded notifications in delivery order.
func (n *Notifications) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Messages returns just the message strings in delivery order.
func (n *Notifications) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Message
	}
	return out
}

// Count returns how many times message was delivered.
func (n *Notifications) Count(message string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.Message == message {
			c++
		}
	}
	return c
}
