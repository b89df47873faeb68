package engine

import "fmt"

// CommandKind distinguishes the commands a cart instance accepts.
type CommandKind int

const (
	// CmdAddItem adds one unit of a product to the cart.
	CmdAddItem CommandKind = iota + 1
	// CmdRemoveItem removes every line matching a product.
	CmdRemoveItem
	// CmdUpdateQuantity overwrites (or creates) a product line's quantity.
	CmdUpdateQuantity
	// CmdCheckout starts the checkout sequence.
	CmdCheckout
)

func (k CommandKind) String() string {
	switch k {
	case CmdAddItem:
		return "add_item"
	case CmdRemoveItem:
		return "remove_item"
	case CmdUpdateQuantity:
		return "update_quantity"
	case CmdCheckout:
		return "checkout"
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is one mutating request routed to a cart instance.
// ProductID is unused for CmdCheckout; Quantity only applies to
// CmdUpdateQuantity.
type Command struct {
	Kind      CommandKind
	ProductID string
	Quantity  int
}

// envelope pairs a command with its delivery acknowledgement. applied is
// closed once the instance has processed the command (including no-op
// outcomes), which is what lets a dispatcher's follow-up query observe the
// effect.
type envelope struct {
	cmd     Command
	applied chan struct{}
}
