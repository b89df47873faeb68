// Package engine hosts cart state machine instances.
//
// The engine is the instance router and host: it maps each cart id to exactly
// one running (or retired) Instance, serializes all commands delivered to an
// instance, and answers queries with consistent snapshots. Instances for
// different carts run fully independently.
//
// Each instance executes as a single logical thread of control - one
// goroutine consuming a private command inbox while racing the cart's
// deadlines - so no two events ever mutate the same order record
// concurrently.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/cartflow/internal/order"
	"github.com/roach88/cartflow/internal/store"
)

// Engine owns the set of live cart instances and exposes the command/query
// surface to callers.
//
// Thread-safety: all exported methods are safe for concurrent use.
type Engine struct {
	cfg   Config
	clock *Clock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	instances map[string]*Instance
	closed    bool
}

// New creates an engine. Zero-value Config fields get production defaults;
// see Config.
func New(cfg Config) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:       cfg.withDefaults(),
		clock:     NewClock(),
		ctx:       ctx,
		cancel:    cancel,
		instances: make(map[string]*Instance),
	}
}

// CartID derives the deterministic cart id for a user. One user has at most
// one running cart.
func CartID(userID string) string {
	return "cart-" + userID
}

// InitializeCart starts a new cart instance for userID and returns its cart
// id. Returns ErrAlreadyExists while a previous instance for the same user is
// still running; a retired instance is replaced by the new run.
func (e *Engine) InitializeCart(ctx context.Context, userID string) (string, error) {
	cartID := CartID(userID)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrClosed
	}
	if existing, ok := e.instances[cartID]; ok && !existing.finished() {
		e.mu.Unlock()
		return "", fmt.Errorf("cart %s: %w", cartID, ErrAlreadyExists)
	}
	in := newInstance(cartID, userID, e.cfg, e.clock)
	e.instances[cartID] = in
	e.wg.Add(1)
	e.mu.Unlock()

	// Journal the creation before the run loop can emit anything.
	in.append(ctx, store.Event{
		Kind:    store.EventCartCreated,
		At:      in.created,
		Created: &store.Created{OrderID: in.ord.OrderID, UserID: userID},
	})

	go func() {
		defer e.wg.Done()
		in.run(e.ctx)
	}()

	slog.Info("cart initialized", "cart_id", cartID, "user_id", userID, "order_id", in.ord.OrderID)
	return cartID, nil
}

// Dispatch delivers a command to the cart's instance and blocks until it has
// been applied. Returns ErrNotFound when no live instance exists for cartID.
func (e *Engine) Dispatch(ctx context.Context, cartID string, cmd Command) error {
	in, err := e.instance(cartID)
	if err != nil {
		return err
	}
	return in.dispatch(ctx, cmd)
}

// Order returns a consistent snapshot of the cart's order record. A retired
// instance still answers with its final record; a failed or unknown cart is
// ErrNotFound.
func (e *Engine) Order(cartID string) (order.Order, error) {
	in, err := e.instance(cartID)
	if err != nil {
		return order.Order{}, err
	}
	return in.Snapshot(), nil
}

// CartContents returns the cart's current item list.
func (e *Engine) CartContents(cartID string) ([]order.ProductItem, error) {
	o, err := e.Order(cartID)
	if err != nil {
		return nil, err
	}
	return o.Items, nil
}

// AddItem adds one unit of productID and returns the resulting item list.
func (e *Engine) AddItem(ctx context.Context, cartID, productID string) ([]order.ProductItem, error) {
	if err := e.Dispatch(ctx, cartID, Command{Kind: CmdAddItem, ProductID: productID}); err != nil {
		return nil, err
	}
	return e.CartContents(cartID)
}

// RemoveItem removes productID's lines and returns the resulting item list.
func (e *Engine) RemoveItem(ctx context.Context, cartID, productID string) ([]order.ProductItem, error) {
	if err := e.Dispatch(ctx, cartID, Command{Kind: CmdRemoveItem, ProductID: productID}); err != nil {
		return nil, err
	}
	return e.CartContents(cartID)
}

// UpdateQuantity overwrites productID's quantity and returns the resulting
// item list.
func (e *Engine) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) ([]order.ProductItem, error) {
	if err := e.Dispatch(ctx, cartID, Command{Kind: CmdUpdateQuantity, ProductID: productID, Quantity: quantity}); err != nil {
		return nil, err
	}
	return e.CartContents(cartID)
}

// Checkout starts the checkout sequence and returns the order's total price.
// A business-level failure is not an error here - it shows up as
// checkoutStatus=Error on the record.
func (e *Engine) Checkout(ctx context.Context, cartID string) (float64, error) {
	if err := e.Dispatch(ctx, cartID, Command{Kind: CmdCheckout}); err != nil {
		return 0, err
	}
	o, err := e.Order(cartID)
	if err != nil {
		return 0, err
	}
	return o.TotalPrice(), nil
}

// Journal exposes the engine's event journal for inspection and replay.
func (e *Engine) Journal() store.Journal {
	return e.cfg.Journal
}

// Live returns the number of instances that have not yet retired.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, in := range e.instances {
		if !in.finished() {
			n++
		}
	}
	return n
}

// Close cancels every running instance and waits for their run loops to
// retire. The engine accepts no further work afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	slog.Info("engine closed")
}

func (e *Engine) instance(cartID string) (*Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	in, ok := e.instances[cartID]
	if !ok || in.failed() {
		return nil, fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
	}
	return in, nil
}
