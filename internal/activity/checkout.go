package activity

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/cartflow/internal/catalog"
	"github.com/roach88/cartflow/internal/order"
)

// CheckoutFunc resolves an order snapshot to a checkout outcome.
//
// A returned status models a business-level result (Success, or Error for
// carts the fulfillment side decides to reject). A returned error models an
// attempt failure and is subject to the retry policy.
type CheckoutFunc = Func[order.Order, order.CheckoutStatus]

// Checkout is the production checkout activity.
//
// The fulfillment side is notoriously bad at making cappuccino: an attempt
// fails with probability growing in the cappuccino quantity on the order.
// Everything else always succeeds.
type Checkout struct {
	// roll returns a pseudo-random int in [0, n). Overridable in tests.
	roll func(n int) int
}

// NewCheckout creates a checkout activity backed by math/rand.
func NewCheckout() *Checkout {
	return &Checkout{roll: rand.IntN}
}

// Resolve implements CheckoutFunc.
func (c *Checkout) Resolve(_ context.Context, o order.Order) (order.CheckoutStatus, error) {
	slog.Info("checkout requested", "order_id", o.OrderID, "items", len(o.Items), "total", o.TotalPrice())

	for _, item := range o.Items {
		if item.ProductID != catalog.Cappuccino {
			continue
		}
		if c.roll(101) > 50-10*item.Quantity {
			slog.Error("checkout attempt failed", "order_id", o.OrderID, "product", item.ProductID)
			return "", fmt.Errorf("sorry, we messed up your cappuccino")
		}
	}

	return order.StatusSuccess, nil
}
