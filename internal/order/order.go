// Package order defines the mutable record owned by one cart instance and the
// mutations the state machine applies to it.
//
// The mutation helpers here are shared by the live engine and by journal
// rebuild (internal/store), so a replayed record is identical to the live one.
// They take every input explicitly - product data and timestamps are passed
// in, never looked up - which keeps replay free of catalog and wall-clock
// reads.
package order

import "time"

// ProductItem is one line item in a cart.
type ProductItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is the record owned by a single cart instance.
//
// OrderID is assigned once at creation and never changes. LastModified is
// updated on every applied mutation. CheckoutStatus moves only along the
// transitions documented on CheckoutStatus.
type Order struct {
	OrderID        string         `json:"orderId"`
	Items          []ProductItem  `json:"items"`
	LastModified   time.Time      `json:"lastModified"`
	CheckoutStatus CheckoutStatus `json:"checkoutStatus"`
}

// New creates an open order with no items.
func New(orderID string, now time.Time) Order {
	return Order{
		OrderID:        orderID,
		Items:          []ProductItem{},
		LastModified:   now,
		CheckoutStatus: StatusOpen,
	}
}

// Append adds item as a new line, regardless of whether a line with the same
// product already exists.
func (o *Order) Append(item ProductItem, now time.Time) {
	o.Items = append(o.Items, item)
	o.LastModified = now
}

// Merge folds item into an existing line with the same product, adding the
// quantities, or appends it when no such line exists.
func (o *Order) Merge(item ProductItem, now time.Time) {
	for i := range o.Items {
		if o.Items[i].ProductID == item.ProductID {
			o.Items[i].Quantity += item.Quantity
			o.LastModified = now
			return
		}
	}
	o.Append(item, now)
}

// Remove deletes every line matching productID. It reports whether any line
// was removed; the record is untouched when none matched.
func (o *Order) Remove(productID string, now time.Time) bool {
	kept := o.Items[:0]
	removed := false
	for _, item := range o.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return false
	}
	o.Items = kept
	o.LastModified = now
	return true
}

// SetQuantity overwrites the quantity of the first line matching the item's
// product, or appends a new line when no line matches.
func (o *Order) SetQuantity(item ProductItem, now time.Time) {
	for i := range o.Items {
		if o.Items[i].ProductID == item.ProductID {
			o.Items[i].Quantity = item.Quantity
			o.LastModified = now
			return
		}
	}
	o.Append(item, now)
}

// SetStatus records a checkout status change.
func (o *Order) SetStatus(status CheckoutStatus, now time.Time) {
	o.CheckoutStatus = status
	o.LastModified = now
}

// TotalPrice is the sum of price times quantity over all lines.
func (o *Order) TotalPrice() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Clone returns a deep copy. Mutating the copy never affects the original,
// which is what makes query snapshots safe to hand out.
func (o *Order) Clone() Order {
	out := *o
	out.Items = make([]ProductItem, len(o.Items))
	copy(out.Items, o.Items)
	return out
}
