package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_Recalculate_ItemCount(t *testing.T) {
	o := &Order{
		Items: []OrderItem{
			{Product: "prd-1", Name: "Widget", UnitPrice: 500, Quantity: 2, Subtotal: 1000},
			{Product: "prd-2", Name: "Gadget", UnitPrice: 300, Quantity: 3, Subtotal: 900},
		},
		ShippingCost: 250,
		TaxAmount:    100,
	}

	o.Recalculate()

	assert.Equal(t, 5, o.ItemCount)
	assert.Equal(t, int64(1900), o.Subtotal)
	assert.Equal(t, int64(2250), o.Total)
}

func TestOrder_Recalculate_Empty(t *testing.T) {
	o := &Order{}
	o.Recalculate()
	assert.Equal(t, 0, o.ItemCount)
	assert.Equal(t, int64(0), o.Total)
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusPartiallyShipped, true},
		{OrderStatusPartiallyShipped, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusOnHold, true},
		{OrderStatusOnHold, OrderStatusProcessing, true},

		// No skipping forward or moving backwards.
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusRefunded, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatus_Transitions(t *testing.T) {
	tests := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusPartiallyPaid, true},
		{PaymentStatusPartiallyPaid, PaymentStatusPaid, true},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusPartiallyRefunded, true},
		{PaymentStatusFailed, PaymentStatusPending, true},

		{PaymentStatusRefunded, PaymentStatusPaid, false},
		{PaymentStatusPending, PaymentStatusRefunded, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestFulfillmentStatus_Transitions(t *testing.T) {
	tests := []struct {
		from FulfillmentStatus
		to   FulfillmentStatus
		want bool
	}{
		{FulfillmentStatusUnfulfilled, FulfillmentStatusPartiallyFulfilled, true},
		{FulfillmentStatusUnfulfilled, FulfillmentStatusFulfilled, true},
		{FulfillmentStatusPartiallyFulfilled, FulfillmentStatusFulfilled, true},
		{FulfillmentStatusFulfilled, FulfillmentStatusReturned, true},

		{FulfillmentStatusReturned, FulfillmentStatusUnfulfilled, false},
		{FulfillmentStatusFulfilled, FulfillmentStatusUnfulfilled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_CanBeCancelled(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusOnHold}
	for _, s := range cancellable {
		o := &Order{Status: s}
		assert.True(t, o.CanBeCancelled(), "status %s", s)
	}

	locked := []OrderStatus{
		OrderStatusProcessing, OrderStatusPartiallyShipped, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled,
		OrderStatusRefunded, OrderStatusFailed,
	}
	for _, s := range locked {
		o := &Order{Status: s}
		assert.False(t, o.CanBeCancelled(), "status %s", s)
	}
}

func TestOrder_MachinesAreIndependent(t *testing.T) {
	// Marking an order paid must not force the order status forward;
	// coupling is caller-side policy, never enforced here.
	o := &Order{Status: OrderStatusPending, PaymentStatus: PaymentStatusPending}

	assert.True(t, o.PaymentStatus.CanTransition(PaymentStatusPaid))
	o.PaymentStatus = PaymentStatusPaid

	assert.Equal(t, OrderStatusPending, o.Status)
}
