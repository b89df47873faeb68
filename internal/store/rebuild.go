package store

import (
	"fmt"

	"github.com/roach88/cartflow/internal/order"
)

// Rebuild folds a cart's journal back into its Order record.
//
// Rebuild applies the same mutation helpers the live instance used, with the
// inputs the journal recorded, so the result is identical to the live record
// at the corresponding point. Rejected commands and notifications carry no
// state and are skipped.
func Rebuild(events []Event) (order.Order, error) {
	var o order.Order
	created := false

	for _, ev := range events {
		switch ev.Kind {
		case EventCartCreated:
			if ev.Created == nil {
				return order.Order{}, fmt.Errorf("event seq=%d: cart_created without payload", ev.Seq)
			}
			if created {
				return order.Order{}, fmt.Errorf("event seq=%d: duplicate cart_created", ev.Seq)
			}
			o = order.New(ev.Created.OrderID, ev.At)
			created = true

		case EventCommandApplied:
			if !created {
				return order.Order{}, fmt.Errorf("event seq=%d: command before cart_created", ev.Seq)
			}
			if ev.Command == nil {
				return order.Order{}, fmt.Errorf("event seq=%d: command_applied without payload", ev.Seq)
			}
			if err := applyCommand(&o, ev); err != nil {
				return order.Order{}, err
			}

		case EventCheckoutResolved:
			if ev.Outcome == nil {
				return order.Order{}, fmt.Errorf("event seq=%d: checkout_resolved without payload", ev.Seq)
			}
			if status := order.CheckoutStatus(ev.Outcome.Status); status.Valid() {
				o.SetStatus(status, ev.At)
			}

		case EventRunFinished:
			if ev.Outcome != nil {
				if status := order.CheckoutStatus(ev.Outcome.Status); status.Valid() {
					o.SetStatus(status, ev.At)
				}
			}

		case EventCommandRejected, EventNotificationSent:
			// no state change

		default:
			return order.Order{}, fmt.Errorf("event seq=%d: unknown kind %q", ev.Seq, ev.Kind)
		}
	}

	if !created {
		return order.Order{}, fmt.Errorf("journal has no cart_created event")
	}
	return o, nil
}

func applyCommand(o *order.Order, ev Event) error {
	cmd := ev.Command
	item := order.ProductItem{
		ProductID: cmd.ProductID,
		Name:      cmd.Name,
		Price:     cmd.Price,
		Quantity:  cmd.Quantity,
	}

	switch cmd.Op {
	case OpAppendItem:
		o.Append(item, ev.At)
	case OpMergeItem:
		o.Merge(item, ev.At)
	case OpRemoveItem:
		o.Remove(cmd.ProductID, ev.At)
	case OpSetQuantity:
		o.SetQuantity(item, ev.At)
	case OpCheckout:
		o.SetStatus(order.StatusProcessing, ev.At)
	default:
		return fmt.Errorf("event seq=%d: unknown command op %q", ev.Seq, cmd.Op)
	}
	return nil
}
