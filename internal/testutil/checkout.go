package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/cartflow/internal/order"
)

// CheckoutStep is one scripted checkout attempt outcome.
type CheckoutStep struct {
	Status order.CheckoutStatus
	Err    error
	// Delay stalls the attempt before resolving, honoring ctx cancellation.
	Delay time.Duration
}

// ScriptedCheckout replays predetermined attempt outcomes in order; once the
// script is exhausted the last step repeats. Safe for concurrent use.
type ScriptedCheckout struct {
	mu    sync.Mutex
	steps []CheckoutStep
	calls int
}

// NewScriptedCheckout creates a checkout activity that resolves attempts per
// the given script.
func NewScriptedCheckout(steps ...CheckoutStep) *ScriptedCheckout {
	return &ScriptedCheckout{steps: steps}
}

// Succeed is a script that always resolves to Success.
func Succeed() *ScriptedCheckout {
	return NewScriptedCheckout(CheckoutStep{Status: order.StatusSuccess})
}

// Resolve implements activity.CheckoutFunc.
func (s *ScriptedCheckout) Resolve(ctx context.Context, _ order.Order) (order.CheckoutStatus, error) {
	s.mu.Lock()
	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	step := s.steps[idx]
	s.calls++
	s.mu.Unlock()

	if step.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(step.Delay):
		}
	}
	if step.Err != nil {
		return "", step.Err
	}
	return step.Status, nil
}

// Calls returns how many attempts have been made.
func (s *ScriptedCheckout) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
