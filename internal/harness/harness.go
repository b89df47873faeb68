package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/cartflow/internal/activity"
	"github.com/roach88/cartflow/internal/engine"
	"github.com/roach88/cartflow/internal/order"
	"github.com/roach88/cartflow/internal/store"
	"github.com/roach88/cartflow/internal/testutil"
)

// Result is the observable outcome of one scenario run.
type Result struct {
	Order    order.Order
	Events   []store.Event
	Messages []string

	// Errors holds expectation violations; empty means the scenario passed.
	Errors []string
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool {
	return len(r.Errors) == 0
}

// Run executes the scenario on a fresh engine with deterministic
// collaborators. A returned error means the scenario could not be executed;
// expectation failures land in Result.Errors instead.
func Run(s *Scenario) (*Result, error) {
	notes := testutil.NewNotifications()
	journal := store.NewMemory()

	script := make([]testutil.CheckoutStep, 0, len(s.Checkout))
	for _, o := range s.Checkout {
		if o.Error != "" {
			script = append(script, testutil.CheckoutStep{Err: errors.New(o.Error)})
			continue
		}
		script = append(script, testutil.CheckoutStep{Status: order.CheckoutStatus(o.Status)})
	}
	if len(script) == 0 {
		script = append(script, testutil.CheckoutStep{Status: order.StatusSuccess})
	}

	eng := engine.New(engine.Config{
		IDs:      activity.NewFixedIDs("order-" + s.Name),
		Checkout: testutil.NewScriptedCheckout(script...).Resolve,
		Notifier: notes,
		Journal:  journal,
		Retry: activity.RetryPolicy{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			AttemptTimeout:  time.Second,
		},
		Timeouts: engine.Timeouts{
			Reminder:      time.Minute,
			Cancel:        2 * time.Minute,
			MaxProcessing: time.Minute,
		},
		MergeDuplicateLines:      s.MergeDuplicateLines,
		AllowEditsDuringCheckout: s.AllowEditsDuringCheckout,
	})
	defer eng.Close()

	ctx := context.Background()
	cartID, err := eng.InitializeCart(ctx, s.User)
	if err != nil {
		return nil, fmt.Errorf("initialize cart: %w", err)
	}

	checkedOut := false
	for i, step := range s.Steps {
		cmd, err := step.command()
		if err != nil {
			return nil, err
		}
		if cmd.Kind == engine.CmdCheckout {
			checkedOut = true
		}
		if err := eng.Dispatch(ctx, cartID, cmd); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	// A cart that checked out retires on its own; one that did not would only
	// retire at the cancellation deadline, so its state is read live.
	if checkedOut {
		if err := waitIdle(eng, 5*time.Second); err != nil {
			return nil, err
		}
	}

	final, err := eng.Order(cartID)
	if err != nil {
		return nil, fmt.Errorf("read final order: %w", err)
	}
	events, err := journal.Events(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	res := &Result{Order: final, Events: events, Messages: notes.Messages()}
	res.check(s.Expect)
	return res, nil
}

func waitIdle(eng *engine.Engine, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for eng.Live() > 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("cart did not retire within %s", timeout)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (r *Result) check(e *Expectation) {
	if e == nil {
		return
	}
	if e.Status != "" && r.Order.CheckoutStatus != order.CheckoutStatus(e.Status) {
		r.Errors = append(r.Errors, fmt.Sprintf("status: want %s, got %s", e.Status, r.Order.CheckoutStatus))
	}
	if e.Total != nil && r.Order.TotalPrice() != *e.Total {
		r.Errors = append(r.Errors, fmt.Sprintf("total: want %.2f, got %.2f", *e.Total, r.Order.TotalPrice()))
	}
	if e.Messages != nil && !slices.Equal(e.Messages, r.Messages) {
		r.Errors = append(r.Errors, fmt.Sprintf("messages: want %q, got %q", e.Messages, r.Messages))
	}
}
