package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/cartflow/internal/activity"
	"github.com/roach88/cartflow/internal/order"
	"github.com/roach88/cartflow/internal/store"
)

// Notification messages sent by the cart state machine.
const (
	MsgFinishOrder   = "Please, finish your order"
	MsgCanceled      = "Your order was canceled."
	MsgCannotFulfill = "Sorry, we are not able to fulfill your order."
	MsgThanks        = "Thank you for your order."
)

// Instance is one running cart lifecycle: a single Order record plus the
// goroutine that owns it.
//
// Concurrency model: all mutations happen in the run goroutine, which
// consumes the instance's private inbox one command at a time. The record
// mutex exists only so Snapshot can hand out a consistent copy while a
// command is being applied - a query observes the state immediately before or
// after a mutation, never a torn intermediate.
//
// Suspension points are the three timer waits and the checkout activity
// invocation. Commands arriving while a step is suspended queue behind it.
type Instance struct {
	cartID  string
	userID  string
	created time.Time

	cfg   Config
	clock *Clock

	inbox *inbox
	done  chan struct{}

	mu  sync.Mutex
	ord order.Order
	err error // abnormal termination cause; write precedes close(done)
}

func newInstance(cartID, userID string, cfg Config, clock *Clock) *Instance {
	now := time.Now()
	return &Instance{
		cartID:  cartID,
		userID:  userID,
		created: now,
		cfg:     cfg,
		clock:   clock,
		inbox:   newInbox(),
		done:    make(chan struct{}),
		ord:     order.New(cfg.IDs.NewID(), now),
	}
}

// Snapshot returns a consistent deep copy of the order record.
func (in *Instance) Snapshot() order.Order {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ord.Clone()
}

func (in *Instance) status() order.CheckoutStatus {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ord.CheckoutStatus
}

func (in *Instance) finished() bool {
	select {
	case <-in.done:
		return true
	default:
		return false
	}
}

// failed reports whether the run ended abnormally. Only meaningful once
// finished.
func (in *Instance) failed() bool {
	if !in.finished() {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err != nil
}

// dispatch delivers cmd and blocks until it has been applied, the instance
// retires, or ctx ends.
func (in *Instance) dispatch(ctx context.Context, cmd Command) error {
	env := &envelope{cmd: cmd, applied: make(chan struct{})}
	if !in.inbox.Enqueue(env) {
		return fmt.Errorf("cart %s: %w", in.cartID, ErrNotFound)
	}

	select {
	case <-env.applied:
		return nil
	case <-in.done:
		// The run ended first; the command may still have been the last one
		// applied.
		select {
		case <-env.applied:
			return nil
		default:
		}
		return fmt.Errorf("cart %s: %w", in.cartID, ErrNotFound)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes the cart lifecycle: three escalating deadline waits racing the
// checkout status, with commands applied in between.
func (in *Instance) run(ctx context.Context) {
	var runErr error
	defer func() { in.finish(ctx, runErr) }()

	slog.Info("cart run started", "cart_id", in.cartID, "user_id", in.userID, "order_id", in.ord.OrderID)

	// Reminder: give the user Timeouts.Reminder from creation to start
	// checkout before nudging them.
	if _, runErr = in.await(ctx, in.created.Add(in.cfg.Timeouts.Reminder), func() bool {
		return in.status() != order.StatusOpen
	}); runErr != nil {
		return
	}
	if in.status() == order.StatusOpen {
		in.notify(ctx, MsgFinishOrder)
	}

	// Cancellation: the cart closes Timeouts.Cancel after creation unless
	// checkout is at least in flight by then.
	if _, runErr = in.await(ctx, in.created.Add(in.cfg.Timeouts.Cancel), func() bool {
		s := in.status()
		return s != order.StatusOpen && s != order.StatusProcessing
	}); runErr != nil {
		return
	}
	if in.status() == order.StatusOpen {
		in.notify(ctx, MsgCanceled)
		in.setStatus(ctx, order.StatusCanceled)
		return
	}

	// Maximum processing time: checkout is in flight or resolved; give it
	// Timeouts.MaxProcessing from here to reach a terminal outcome.
	var resolved bool
	if resolved, runErr = in.await(ctx, time.Now().Add(in.cfg.Timeouts.MaxProcessing), func() bool {
		s := in.status()
		return s == order.StatusSuccess || s == order.StatusError
	}); runErr != nil {
		return
	}
	if !resolved {
		// Fall through to the outcome branch anyway, but loudly.
		slog.Warn("checkout did not resolve before the processing deadline",
			"cart_id", in.cartID,
			"status", in.status(),
		)
	}
	if in.status() == order.StatusError {
		in.notify(ctx, MsgCannotFulfill)
	} else {
		in.notify(ctx, MsgThanks)
	}
}

// await blocks until pred is true, deadline passes, or ctx ends, applying
// queued commands as they arrive. It returns whether pred held when the wait
// resolved. A non-nil error (fatal command failure or cancellation) aborts
// the run.
func (in *Instance) await(ctx context.Context, deadline time.Time, pred func() bool) (bool, error) {
	for {
		// Drain queued commands before evaluating pred, so a command that
		// arrived during the previous step is never dropped by an early
		// resolution.
		if env, ok := in.inbox.TryDequeue(); ok {
			if err := in.apply(ctx, env); err != nil {
				return false, err
			}
			continue
		}

		if pred() {
			return true, nil
		}

		remain := time.Until(deadline)
		if remain <= 0 {
			return pred(), nil
		}

		timer := time.NewTimer(remain)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-in.inbox.Wait():
			timer.Stop()
		case <-timer.C:
			return pred(), nil
		}
	}
}

// apply processes one command. Only checkout can fail, and only fatally.
func (in *Instance) apply(ctx context.Context, env *envelope) error {
	defer close(env.applied)

	switch env.cmd.Kind {
	case CmdAddItem:
		in.applyAdd(ctx, env.cmd)
	case CmdRemoveItem:
		in.applyRemove(ctx, env.cmd)
	case CmdUpdateQuantity:
		in.applyUpdate(ctx, env.cmd)
	case CmdCheckout:
		return in.applyCheckout(ctx)
	default:
		slog.Warn("unknown command ignored", "cart_id", in.cartID, "kind", env.cmd.Kind)
	}
	return nil
}

func (in *Instance) applyAdd(ctx context.Context, cmd Command) {
	if in.rejectFrozen(ctx, cmd) {
		return
	}
	product, ok := in.cfg.Catalog.Lookup(cmd.ProductID)
	if !ok {
		in.reject(ctx, cmd, "unknown product")
		return
	}

	item := order.ProductItem{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 1}
	now := time.Now()
	op := store.OpAppendItem

	in.mu.Lock()
	if in.cfg.MergeDuplicateLines {
		in.ord.Merge(item, now)
		op = store.OpMergeItem
	} else {
		in.ord.Append(item, now)
	}
	in.mu.Unlock()

	in.append(ctx, store.Event{
		Kind: store.EventCommandApplied,
		At:   now,
		Command: &store.Command{
			Op: op, ProductID: item.ProductID, Name: item.Name, Price: item.Price, Quantity: item.Quantity,
		},
	})
}

func (in *Instance) applyRemove(ctx context.Context, cmd Command) {
	if in.rejectFrozen(ctx, cmd) {
		return
	}

	now := time.Now()
	in.mu.Lock()
	removed := in.ord.Remove(cmd.ProductID, now)
	in.mu.Unlock()

	if !removed {
		slog.Debug("remove ignored, product not in cart", "cart_id", in.cartID, "product", cmd.ProductID)
		return
	}
	in.append(ctx, store.Event{
		Kind:    store.EventCommandApplied,
		At:      now,
		Command: &store.Command{Op: store.OpRemoveItem, ProductID: cmd.ProductID},
	})
}

func (in *Instance) applyUpdate(ctx context.Context, cmd Command) {
	if in.rejectFrozen(ctx, cmd) {
		return
	}
	if cmd.Quantity < 1 && !in.cfg.AllowNonPositiveQuantity {
		in.reject(ctx, cmd, "non-positive quantity")
		return
	}
	product, ok := in.cfg.Catalog.Lookup(cmd.ProductID)
	if !ok {
		in.reject(ctx, cmd, "unknown product")
		return
	}

	item := order.ProductItem{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: cmd.Quantity}
	now := time.Now()
	in.mu.Lock()
	in.ord.SetQuantity(item, now)
	in.mu.Unlock()

	in.append(ctx, store.Event{
		Kind: store.EventCommandApplied,
		At:   now,
		Command: &store.Command{
			Op: store.OpSetQuantity, ProductID: item.ProductID, Name: item.Name, Price: item.Price, Quantity: item.Quantity,
		},
	})
}

// applyCheckout runs the checkout sequence: Processing, then the activity
// under the retry policy, then the classified outcome.
//
// Retries-exhausted is recovered here and becomes a business Error outcome.
// Any other invocation fault is fatal to the instance.
func (in *Instance) applyCheckout(ctx context.Context) error {
	if in.status() != order.StatusOpen {
		slog.Debug("checkout ignored", "cart_id", in.cartID, "status", in.status())
		return nil
	}

	started := in.setStatus(ctx, order.StatusProcessing)
	in.append(ctx, store.Event{
		Kind:    store.EventCommandApplied,
		At:      started,
		Command: &store.Command{Op: store.OpCheckout},
	})

	snap := in.Snapshot()
	outcome, err := activity.Invoke(ctx, "checkout", in.cfg.Retry, snap, in.cfg.Checkout)

	switch {
	case err == nil:
		if outcome != order.StatusSuccess && outcome != order.StatusError {
			return fmt.Errorf("checkout returned invalid status %q", outcome)
		}
		at := in.setStatus(ctx, outcome)
		in.append(ctx, store.Event{
			Kind:    store.EventCheckoutResolved,
			At:      at,
			Outcome: &store.Outcome{Status: string(outcome)},
		})
		return nil

	case errors.Is(err, activity.ErrRetriesExhausted):
		at := in.setStatus(ctx, order.StatusError)
		in.append(ctx, store.Event{
			Kind:    store.EventCheckoutResolved,
			At:      at,
			Outcome: &store.Outcome{Status: string(order.StatusError), Err: err.Error()},
		})
		return nil

	default:
		return fmt.Errorf("checkout activity: %w", err)
	}
}

// rejectFrozen refuses item mutations once checkout has started, unless
// configured otherwise. Reports whether the command was rejected.
func (in *Instance) rejectFrozen(ctx context.Context, cmd Command) bool {
	if in.cfg.AllowEditsDuringCheckout || in.status() == order.StatusOpen {
		return false
	}
	in.reject(ctx, cmd, "checkout in progress")
	return true
}

func (in *Instance) reject(ctx context.Context, cmd Command, reason string) {
	slog.Debug("command rejected",
		"cart_id", in.cartID,
		"command", cmd.Kind.String(),
		"product", cmd.ProductID,
		"reason", reason,
	)
	in.append(ctx, store.Event{
		Kind: store.EventCommandRejected,
		Command: &store.Command{
			Op: cmd.Kind.String(), ProductID: cmd.ProductID, Quantity: cmd.Quantity, Reason: reason,
		},
	})
}

func (in *Instance) setStatus(_ context.Context, status order.CheckoutStatus) time.Time {
	now := time.Now()
	in.mu.Lock()
	in.ord.SetStatus(status, now)
	in.mu.Unlock()
	return now
}

func (in *Instance) notify(ctx context.Context, message string) {
	if err := in.cfg.Notifier.Notify(ctx, in.userID, message); err != nil {
		slog.Error("notification failed", "cart_id", in.cartID, "user_id", in.userID, "error", err)
	}
	in.append(ctx, store.Event{
		Kind:         store.EventNotificationSent,
		Notification: &store.Notification{UserID: in.userID, Message: message},
	})
}

// finish retires the instance: no more commands, final journal entry, done
// closed last so observers see the terminal record.
func (in *Instance) finish(ctx context.Context, runErr error) {
	in.inbox.Close()

	in.mu.Lock()
	in.err = runErr
	final := in.ord.CheckoutStatus
	at := in.ord.LastModified
	in.mu.Unlock()

	outcome := &store.Outcome{Status: string(final)}
	if runErr != nil {
		outcome.Err = runErr.Error()
		slog.Error("cart run failed", "cart_id", in.cartID, "error", runErr)
	} else {
		slog.Info("cart run finished", "cart_id", in.cartID, "status", final)
	}

	// The run's context may already be cancelled on shutdown; the final
	// journal entry still has to land.
	in.append(context.WithoutCancel(ctx), store.Event{
		Kind:    store.EventRunFinished,
		At:      at,
		Outcome: outcome,
	})

	close(in.done)
}

// append stamps and journals one event. Journal failures are logged and
// execution continues - retrying writes would make replay nondeterministic.
func (in *Instance) append(ctx context.Context, ev store.Event) {
	ev.CartID = in.cartID
	ev.Seq = in.clock.Next()
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if err := in.cfg.Journal.Append(ctx, ev); err != nil {
		slog.Error("journal append failed",
			"cart_id", in.cartID,
			"kind", ev.Kind,
			"seq", ev.Seq,
			"error", err,
		)
	}
}
