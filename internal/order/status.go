package order

// CheckoutStatus tracks where an order is in its checkout lifecycle.
//
// Transitions:
//
//	Open → Processing → {Success, Error}
//	Open → Canceled
//
// Success, Error, and Canceled are terminal - no further transitions occur.
type CheckoutStatus string

const (
	// StatusOpen means the cart accepts item mutations and checkout has not started.
	StatusOpen CheckoutStatus = "OPEN"
	// StatusProcessing means the checkout activity is in flight.
	StatusProcessing CheckoutStatus = "PROCESSING"
	// StatusSuccess means checkout completed successfully.
	StatusSuccess CheckoutStatus = "SUCCESS"
	// StatusError means checkout failed, either as a business outcome or
	// because every retry attempt was exhausted.
	StatusError CheckoutStatus = "ERROR"
	// StatusCanceled means the cart hit its cancellation deadline before
	// checkout started.
	StatusCanceled CheckoutStatus = "CANCELED"
)

// Terminal reports whether no further transitions can occur from s.
func (s CheckoutStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusError, StatusCanceled:
		return true
	}
	return false
}

// Valid reports whether s is one of the defined statuses.
func (s CheckoutStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusProcessing, StatusSuccess, StatusError, StatusCanceled:
		return true
	}
	return false
}
