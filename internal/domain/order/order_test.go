package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "SO-20260801-0001", "Jane Doe", "jane@example.com", "USD")
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.True(t, o.Total.IsZero())
	assert.NoError(t, o.Validate())
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder(uuid.New(), "", "Jane", "jane@example.com", "USD")
	assert.Error(t, err)

	_, err = NewOrder(uuid.Nil, "SO-1", "Jane", "jane@example.com", "USD")
	assert.Error(t, err)

	_, err = NewOrder(uuid.New(), "SO-1", "Jane", "jane@example.com", "")
	assert.Error(t, err)
}

func TestNewOrderItem_Validation(t *testing.T) {
	orderID := uuid.New()

	_, err := NewOrderItem(orderID, "SKU-1", "", decimal.NewFromInt(1), decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewOrderItem(orderID, "SKU-1", "Widget", decimal.Zero, decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewOrderItem(orderID, "SKU-1", "Widget", decimal.NewFromInt(1), decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestOrder_AddItem_RecalculatesTotals(t *testing.T) {
	o := newTestOrder(t)

	item, err := NewOrderItem(o.ID, "SKU-1", "Widget", decimal.NewFromInt(3), decimal.NewFromInt(20))
	require.NoError(t, err)

	updated := o.AddItem(*item)

	// Original untouched
	assert.Empty(t, o.Items)
	assert.True(t, o.Total.IsZero())

	assert.Len(t, updated.Items, 1)
	assert.True(t, updated.Subtotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(60)))
}

func TestOrder_ApplyTransition(t *testing.T) {
	o := newTestOrder(t)

	updated, note, err := o.ApplyTransition(StatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)
	assert.Equal(t, "Order moved to processing", note)

	// Receiver is never mutated
	assert.Equal(t, StatusPending, o.Status)
}

func TestOrder_ApplyTransition_CustomNote(t *testing.T) {
	o := newTestOrder(t)

	_, note, err := o.ApplyTransition(StatusCancelled, "customer asked to cancel")
	require.NoError(t, err)
	assert.Equal(t, "customer asked to cancel", note)
}

func TestOrder_ApplyTransition_Illegal(t *testing.T) {
	o := newTestOrder(t)

	_, _, err := o.ApplyTransition(StatusDelivered, "")
	require.Error(t, err)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StatusPending, invalid.From)
	assert.Equal(t, StatusDelivered, invalid.To)
}

func TestOrder_ApplyTransition_SameState(t *testing.T) {
	o := newTestOrder(t)

	_, _, err := o.ApplyTransition(StatusPending, "just a note")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestOrder_ForceStatus_BypassesTable(t *testing.T) {
	o := newTestOrder(t)

	updated, _, err := o.ForceStatus(StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, updated.Status)

	_, _, err = o.ForceStatus(OrderStatus("bogus"), "")
	assert.Error(t, err)
}

func TestOrder_CanBeCancelled(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		StatusPending:    true,
		StatusProcessing: true,
		StatusConfirmed:  true,
		StatusShipped:    false,
		StatusDelivered:  false,
		StatusCancelled:  false,
		StatusRefunded:   false,
		StatusFailed:     false,
	}

	for status, want := range cancellable {
		o := newTestOrder(t).WithStatus(status)
		assert.Equal(t, want, o.CanBeCancelled(), "status %s", status)
	}
}

func TestOrder_CanBeRefunded(t *testing.T) {
	for _, tc := range []struct {
		status  OrderStatus
		payment PaymentStatus
		want    bool
	}{
		{StatusShipped, PaymentPaid, true},
		{StatusDelivered, PaymentPaid, true},
		{StatusShipped, PaymentPending, false},
		{StatusDelivered, PaymentRefunded, false},
		{StatusConfirmed, PaymentPaid, false},
		{StatusRefunded, PaymentPaid, false},
	} {
		o := newTestOrder(t).WithStatus(tc.status).WithPaymentStatus(tc.payment)
		assert.Equal(t, tc.want, o.CanBeRefunded(), "status=%s payment=%s", tc.status, tc.payment)
	}
}

func TestOrder_WithERPLinkage_PartialUpdate(t *testing.T) {
	o := newTestOrder(t)
	so := "SO-77"

	updated := o.WithERPLinkage(&so, nil, nil)
	assert.True(t, updated.IsProvisioned())
	assert.Nil(t, updated.ERPInvoiceID)

	inv := "INV-12"
	updated = updated.WithERPLinkage(nil, &inv, nil)
	require.NotNil(t, updated.ERPSaleOrderID)
	assert.Equal(t, "SO-77", *updated.ERPSaleOrderID)
	assert.Equal(t, "INV-12", *updated.ERPInvoiceID)
}

func TestOrder_CloneIsolation(t *testing.T) {
	o := newTestOrder(t)
	item, err := NewOrderItem(o.ID, "SKU-1", "Widget", decimal.NewFromInt(1), decimal.NewFromInt(5))
	require.NoError(t, err)
	withItem := o.AddItem(*item)

	cp := withItem.WithStatus(StatusProcessing)
	cp.Items[0].ProductName = "Changed"

	assert.Equal(t, "Widget", withItem.Items[0].ProductName)
}

func TestOrder_Validate_Enums(t *testing.T) {
	o := newTestOrder(t)
	o.Status = OrderStatus("bogus")
	assert.Error(t, o.Validate())

	o = newTestOrder(t)
	o.PaymentStatus = PaymentStatus("bogus")
	assert.Error(t, o.Validate())
}

func TestNewStatusHistoryEntry(t *testing.T) {
	before := newTestOrder(t)
	after := before.WithStatus(StatusProcessing)

	entry := NewStatusHistoryEntry(before, after, "note", "")
	assert.Equal(t, ActorSystem, entry.ChangedBy)
	require.NotNil(t, entry.FromStatus)
	assert.Equal(t, StatusPending, *entry.FromStatus)
	assert.Equal(t, StatusProcessing, entry.ToStatus)

	// Creation without a prior snapshot has no from-status
	entry = NewStatusHistoryEntry(nil, after, "created", ActorMarketplaceSync)
	assert.Nil(t, entry.FromStatus)
	assert.Equal(t, ActorMarketplaceSync, entry.ChangedBy)
}
