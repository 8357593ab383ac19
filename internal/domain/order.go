package domain

import "time"

// OrderStatus tracks the overall order lifecycle.
type OrderStatus string

// Order statuses.
const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusProcessing       OrderStatus = "processing"
	OrderStatusPartiallyShipped OrderStatus = "partially_shipped"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusCancelled        OrderStatus = "cancelled"
	OrderStatusRefunded         OrderStatus = "refunded"
	OrderStatusOnHold           OrderStatus = "on_hold"
	OrderStatusFailed           OrderStatus = "failed"
)

// PaymentStatus tracks payment independently of the order lifecycle.
type PaymentStatus string

// Payment statuses.
const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusPartiallyPaid     PaymentStatus = "partially_paid"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusFailed            PaymentStatus = "failed"
)

// FulfillmentStatus tracks physical fulfillment independently of both.
type FulfillmentStatus string

// Fulfillment statuses.
const (
	FulfillmentStatusUnfulfilled        FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentStatusFulfilled          FulfillmentStatus = "fulfilled"
	FulfillmentStatusReturned           FulfillmentStatus = "returned"
)

// The three machines advance independently. Setting paymentStatus = paid does
// NOT advance status, and vice versa; any such coupling is caller-side policy
// that this package deliberately does not enforce.
var (
	orderTransitions = map[OrderStatus][]OrderStatus{
		OrderStatusPending:          {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusOnHold, OrderStatusFailed},
		OrderStatusConfirmed:        {OrderStatusProcessing, OrderStatusCancelled, OrderStatusOnHold, OrderStatusFailed},
		OrderStatusProcessing:       {OrderStatusPartiallyShipped, OrderStatusShipped, OrderStatusOnHold, OrderStatusFailed},
		OrderStatusPartiallyShipped: {OrderStatusShipped, OrderStatusOnHold, OrderStatusFailed},
		OrderStatusShipped:          {OrderStatusDelivered, OrderStatusFailed},
		OrderStatusDelivered:        {OrderStatusCompleted, OrderStatusRefunded},
		OrderStatusCompleted:        {OrderStatusRefunded},
		OrderStatusOnHold:           {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled, OrderStatusFailed},
		OrderStatusCancelled:        {},
		OrderStatusRefunded:         {},
		OrderStatusFailed:           {},
	}

	paymentTransitions = map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:           {PaymentStatusPaid, PaymentStatusPartiallyPaid, PaymentStatusFailed},
		PaymentStatusPartiallyPaid:     {PaymentStatusPaid, PaymentStatusPartiallyRefunded, PaymentStatusFailed},
		PaymentStatusPaid:              {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
		PaymentStatusPartiallyRefunded: {PaymentStatusRefunded},
		PaymentStatusRefunded:          {},
		PaymentStatusFailed:            {PaymentStatusPending},
	}

	fulfillmentTransitions = map[FulfillmentStatus][]FulfillmentStatus{
		FulfillmentStatusUnfulfilled:        {FulfillmentStatusPartiallyFulfilled, FulfillmentStatusFulfilled},
		FulfillmentStatusPartiallyFulfilled: {FulfillmentStatusFulfilled, FulfillmentStatusReturned},
		FulfillmentStatusFulfilled:          {FulfillmentStatusReturned},
		FulfillmentStatusReturned:           {},
	}
)

// CanTransition reports whether the order status may move from -> to.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition reports whether the payment status may move from -> to.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition reports whether the fulfillment status may move from -> to.
func (s FulfillmentStatus) CanTransition(to FulfillmentStatus) bool {
	for _, next := range fulfillmentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is an immutable snapshot of a product line at order-creation
// time. Later product price or name changes never touch it.
type OrderItem struct {
	Product   string `json:"product"` // Weak reference to the product.
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name"`       // Snapshot.
	UnitPrice int64  `json:"unit_price"` // Snapshot, minor currency units.
	Quantity  int    `json:"quantity" validate:"gte=1"`
	Subtotal  int64  `json:"subtotal"` // UnitPrice * Quantity at creation.
}

// Order is a customer purchase.
type Order struct {
	Base
	OrderNumber       string            `json:"order_number"` // Unique, generated once, never reassigned.
	User              string            `json:"user" validate:"required"`
	Items             []OrderItem       `json:"items" validate:"required,min=1,dive"`
	ItemCount         int               `json:"item_count"` // Derived: sum of item quantities.
	Currency          string            `json:"currency" validate:"required,len=3"`
	Subtotal          int64             `json:"subtotal"`
	ShippingCost      int64             `json:"shipping_cost"`
	TaxAmount         int64             `json:"tax_amount"`
	Total             int64             `json:"total"`
	Status            OrderStatus       `json:"status"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	ShippingAddress   Address           `json:"shipping_address"`
	Notes             string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	PlacedAt          time.Time         `json:"placed_at"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
}

// Recalculate overwrites the derived totals from the item snapshots.
// Invoked by OrderService immediately before every persist.
func (o *Order) Recalculate() {
	count := 0
	var subtotal int64
	for _, item := range o.Items {
		count += item.Quantity
		subtotal += item.Subtotal
	}
	o.ItemCount = count
	o.Subtotal = subtotal
	o.Total = subtotal + o.ShippingCost + o.TaxAmount
}

// CanBeCancelled is true only while the order has not entered processing.
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusOnHold:
		return true
	default:
		return false
	}
}
