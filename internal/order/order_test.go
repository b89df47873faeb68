package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(5 * time.Second)
	t2 = t0.Add(10 * time.Second)
)

func ristretto(qty int) ProductItem {
	return ProductItem{ProductID: "Ristretto", Name: "Ristretto from Kongo", Price: 1, Quantity: qty}
}

func espresso(qty int) ProductItem {
	return ProductItem{ProductID: "Espresso", Name: "Espresso from Columbia", Price: 1, Quantity: qty}
}

func TestNew(t *testing.T) {
	o := New("order-1", t0)

	assert.Equal(t, "order-1", o.OrderID)
	assert.Empty(t, o.Items)
	assert.Equal(t, t0, o.LastModified)
	assert.Equal(t, StatusOpen, o.CheckoutStatus)
}

func TestAppend_AllowsDuplicateLines(t *testing.T) {
	o := New("order-1", t0)

	o.Append(ristretto(1), t1)
	o.Append(ristretto(1), t2)

	require.Len(t, o.Items, 2)
	assert.Equal(t, t2, o.LastModified)
}

func TestMerge_FoldsIntoExistingLine(t *testing.T) {
	o := New("order-1", t0)

	o.Merge(ristretto(1), t1)
	o.Merge(ristretto(1), t2)

	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestMerge_AppendsWhenAbsent(t *testing.T) {
	o := New("order-1", t0)

	o.Merge(ristretto(1), t1)
	o.Merge(espresso(3), t2)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Espresso", o.Items[1].ProductID)
	assert.Equal(t, 3, o.Items[1].Quantity)
}

func TestRemove(t *testing.T) {
	o := New("order-1", t0)
	o.Append(ristretto(1), t0)
	o.Append(espresso(1), t0)
	o.Append(ristretto(1), t0)

	removed := o.Remove("Ristretto", t1)

	require.True(t, removed, "remove should report a match")
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Espresso", o.Items[0].ProductID)
	assert.Equal(t, t1, o.LastModified)
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	o := New("order-1", t0)
	o.Append(espresso(1), t0)

	removed := o.Remove("Ristretto", t1)

	assert.False(t, removed)
	assert.Len(t, o.Items, 1)
	assert.Equal(t, t0, o.LastModified, "no-op must not touch LastModified")
}

func TestSetQuantity_ReplacesExistingLine(t *testing.T) {
	o := New("order-1", t0)
	o.Append(ristretto(1), t0)

	o.SetQuantity(ristretto(3), t1)

	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, t1, o.LastModified)
}

func TestSetQuantity_AppendsWhenAbsent(t *testing.T) {
	o := New("order-1", t0)

	o.SetQuantity(espresso(4), t1)

	require.Len(t, o.Items, 1)
	assert.Equal(t, 4, o.Items[0].Quantity)
}

// Update and remove never introduce a second line for the same product - the
// only source of duplicate lines is Append.
func TestSetQuantity_KeepsProductIDsUnique(t *testing.T) {
	o := New("order-1", t0)

	o.SetQuantity(ristretto(1), t0)
	o.SetQuantity(espresso(2), t0)
	o.SetQuantity(ristretto(5), t1)
	o.Remove("Espresso", t1)
	o.SetQuantity(espresso(1), t2)

	seen := map[string]bool{}
	for _, item := range o.Items {
		require.False(t, seen[item.ProductID], "duplicate line for %s", item.ProductID)
		seen[item.ProductID] = true
	}
}

func TestTotalPrice(t *testing.T) {
	o := New("order-1", t0)
	assert.Zero(t, o.TotalPrice())

	o.Append(ristretto(3), t0)
	o.Append(ProductItem{ProductID: "Cappuccino", Name: "Cappuccino from Italy", Price: 2, Quantity: 2}, t0)

	assert.InDelta(t, 7.0, o.TotalPrice(), 1e-9)
}

func TestClone_IsIndependent(t *testing.T) {
	o := New("order-1", t0)
	o.Append(ristretto(1), t0)

	snap := o.Clone()
	o.SetQuantity(ristretto(9), t1)
	o.SetStatus(StatusProcessing, t1)

	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, StatusOpen, snap.CheckoutStatus)
}

func TestCheckoutStatus_Terminal(t *testing.T) {
	assert.False(t, StatusOpen.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestCheckoutStatus_Valid(t *testing.T) {
	for _, s := range []CheckoutStatus{StatusOpen, StatusProcessing, StatusSuccess, StatusError, StatusCanceled} {
		assert.True(t, s.Valid(), "%s should be valid", s)
	}
	assert.False(t, CheckoutStatus("SHIPPED").Valid())
}
