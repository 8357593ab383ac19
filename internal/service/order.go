package service

import (
	"context"
	"time"

	"github.com/storefrontapp/storefront-server/internal/audit"
	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/errors"
	"github.com/storefrontapp/storefront-server/internal/id"
	"github.com/storefrontapp/storefront-server/internal/store"
)

// OrderService manages purchases. Item lines are immutable snapshots taken
// at creation; the three status machines (order, payment, fulfillment)
// advance independently through their own transition tables.
type OrderService struct {
	deps Deps
}

// NewOrderService creates a new order service.
func NewOrderService(deps Deps) *OrderService {
	return &OrderService{deps: deps}
}

// OrderItemParams selects a product line for a new order. SKU picks a
// variant; empty means the base product.
type OrderItemParams struct {
	Product  string `json:"product" validate:"required"`
	SKU      string `json:"sku,omitempty"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderParams is the caller-supplied draft for a new order. The
// shipping address is optional at creation; when supplied its fields are
// validated in full.
type CreateOrderParams struct {
	User            string            `json:"user" validate:"required"`
	Items           []OrderItemParams `json:"items" validate:"required,min=1,dive"`
	Currency        string            `json:"currency" validate:"required,len=3"`
	ShippingCost    int64             `json:"shipping_cost" validate:"gte=0"`
	TaxAmount       int64             `json:"tax_amount" validate:"gte=0"`
	ShippingAddress *domain.Address   `json:"shipping_address,omitempty"`
	Notes           string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Create places an order. Every product line is resolved against the live
// catalog and frozen into a snapshot; afterwards stock is decremented and
// the sale recorded on each product as separate best-effort writes.
func (s *OrderService) Create(ctx context.Context, params CreateOrderParams) (*domain.Order, error) {
	if err := s.deps.Validator.Validate(params); err != nil {
		return nil, err
	}

	if _, err := s.deps.Store.Users.Get(ctx, params.User); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidReference("user")
		}
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]domain.OrderItem, 0, len(params.Items))
	for _, line := range params.Items {
		item, err := s.snapshotLine(ctx, line, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	number, err := id.OrderNumber(now)
	if err != nil {
		return nil, errors.Internal("generate order number").WithCause(err)
	}

	o := &domain.Order{
		OrderNumber:       number,
		User:              params.User,
		Items:             items,
		Currency:          params.Currency,
		ShippingCost:      params.ShippingCost,
		TaxAmount:         params.TaxAmount,
		Notes:             params.Notes,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		FulfillmentStatus: domain.FulfillmentStatusUnfulfilled,
		PlacedAt:          now,
	}
	if params.ShippingAddress != nil {
		o.ShippingAddress = *params.ShippingAddress
	}
	o.ID = id.MustGenerate(id.PrefixOrder)
	o.InitTimestamps()
	o.Recalculate()

	if err := s.deps.Store.Orders.Create(ctx, o.ID, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		s.recordSale(ctx, o.ID, item, now)
	}
	s.deps.bumpUserStats(ctx, o.User, func(st *domain.UserStats) { st.OrderCount++ })
	s.deps.recordAudit(ctx, "order", o.ID, audit.ActionCreate, o.User)
	s.deps.logger().Info("order placed", "order_id", o.ID, "order_number", o.OrderNumber, "total", o.Total)

	return o, nil
}

// snapshotLine resolves one order line against the catalog and freezes it.
// Insufficient stock is a conflict, not a validation failure: the request
// was well-formed, the world moved.
func (s *OrderService) snapshotLine(ctx context.Context, line OrderItemParams, now time.Time) (domain.OrderItem, error) {
	p, err := s.deps.Store.Products.Get(ctx, line.Product)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return domain.OrderItem{}, errors.InvalidReference("product")
		}
		return domain.OrderItem{}, err
	}
	if p.Status != domain.ProductStatusActive {
		return domain.OrderItem{}, errors.Conflictf("product %s is not purchasable", p.ID)
	}

	name := p.Name
	price := p.EffectivePrice(now)
	stock := p.Stock
	sku := p.SKU

	if line.SKU != "" && line.SKU != p.SKU {
		v := p.Variant(line.SKU)
		if v == nil {
			return domain.OrderItem{}, errors.InvalidReference("sku")
		}
		if !v.IsActive {
			return domain.OrderItem{}, errors.Conflictf("variant %s is not purchasable", v.SKU)
		}
		name = p.Name + " (" + v.Name + ")"
		price = v.Price
		stock = v.Stock
		sku = v.SKU
	}

	if stock < line.Quantity {
		return domain.OrderItem{}, errors.Conflictf("insufficient stock for %s (have %d, want %d)", sku, stock, line.Quantity)
	}

	return domain.OrderItem{
		Product:   p.ID,
		SKU:       sku,
		Name:      name,
		UnitPrice: price,
		Quantity:  line.Quantity,
		Subtotal:  price * int64(line.Quantity),
	}, nil
}

// recordSale decrements stock and appends the sale to the product's
// histories. Best-effort: the order already committed.
func (s *OrderService) recordSale(ctx context.Context, orderID string, item domain.OrderItem, now time.Time) {
	p, err := s.deps.Store.Products.Get(ctx, item.Product)
	if err != nil {
		s.deps.logger().Warn("sale recording skipped", "product_id", item.Product, "error", err)
		return
	}

	variantSKU := item.SKU
	if variantSKU == p.SKU {
		variantSKU = ""
	}
	p.RecordInventoryChange(now, variantSKU, -item.Quantity, "sale "+orderID)
	p.RecordSale(now, orderID, item.SKU, item.Quantity)
	if p.TotalStock() == 0 && p.Status == domain.ProductStatusActive {
		p.Status = domain.ProductStatusOutOfStock
	}
	p.Recalculate(now)
	p.Touch()
	if err := s.deps.Store.Products.Update(ctx, p.ID, p); err != nil {
		s.deps.logger().Warn("sale recording failed", "product_id", p.ID, "order_id", orderID, "error", err)
	}
}

// Get returns an order by ID.
func (s *OrderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.deps.Store.Orders.Get(ctx, orderID)
}

// GetByNumber returns an order by its human-readable order number.
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.deps.Store.Orders.GetByIndex(ctx, "order_number", number)
}

// ListForUser returns a user's orders.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return store.Collect(s.deps.Store.Orders.ListByIndex(ctx, "user", userID))
}

// List returns orders, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	if status != "" {
		return store.Collect(s.deps.Store.Orders.ListByIndex(ctx, "status", string(status)))
	}
	return store.Collect(s.deps.Store.Orders.List(ctx))
}

// UpdateStatus advances the order lifecycle. An edge missing from the
// transition table is a conflict; the other two machines never move here.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	o, err := s.deps.Store.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransition(to) {
		return nil, errors.Conflictf("order status cannot move from %s to %s", o.Status, to)
	}
	o.Status = to
	if to == domain.OrderStatusCancelled {
		now := time.Now().UTC()
		o.CancelledAt = &now
	}

	o.Touch()
	if err := s.deps.Store.Orders.Update(ctx, orderID, o); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "order", orderID, audit.ActionUpdate, "")
	s.deps.logger().Info("order status changed", "order_id", orderID, "status", to)
	return o, nil
}

// UpdatePaymentStatus advances the payment machine only.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID string, to domain.PaymentStatus) (*domain.Order, error) {
	o, err := s.deps.Store.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.PaymentStatus.CanTransition(to) {
		return nil, errors.Conflictf("payment status cannot move from %s to %s", o.PaymentStatus, to)
	}
	o.PaymentStatus = to

	o.Touch()
	if err := s.deps.Store.Orders.Update(ctx, orderID, o); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "order", orderID, audit.ActionUpdate, "")
	return o, nil
}

// UpdateFulfillmentStatus advances the fulfillment machine only.
func (s *OrderService) UpdateFulfillmentStatus(ctx context.Context, orderID string, to domain.FulfillmentStatus) (*domain.Order, error) {
	o, err := s.deps.Store.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.FulfillmentStatus.CanTransition(to) {
		return nil, errors.Conflictf("fulfillment status cannot move from %s to %s", o.FulfillmentStatus, to)
	}
	o.FulfillmentStatus = to

	o.Touch()
	if err := s.deps.Store.Orders.Update(ctx, orderID, o); err != nil {
		return nil, err
	}

	s.deps.recordAudit(ctx, "order", orderID, audit.ActionUpdate, "")
	return o, nil
}

// Cancel cancels an order that has not entered processing, restocking every
// line best-effort.
func (s *OrderService) Cancel(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	o, err := s.deps.Store.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.CanBeCancelled() {
		return nil, errors.Conflictf("order in status %s cannot be cancelled", o.Status)
	}

	now := time.Now().UTC()
	o.Status = domain.OrderStatusCancelled
	o.CancelledAt = &now
	if reason != "" {
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += "cancelled: " + reason
	}

	o.Touch()
	if err := s.deps.Store.Orders.Update(ctx, orderID, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		s.restock(ctx, o.ID, item, now)
	}
	s.deps.recordAudit(ctx, "order", orderID, audit.ActionUpdate, "")
	s.deps.logger().Info("order cancelled", "order_id", orderID)
	return o, nil
}

// restock returns a cancelled line's quantity to inventory.
func (s *OrderService) restock(ctx context.Context, orderID string, item domain.OrderItem, now time.Time) {
	p, err := s.deps.Store.Products.Get(ctx, item.Product)
	if err != nil {
		s.deps.logger().Warn("restock skipped", "product_id", item.Product, "error", err)
		return
	}

	variantSKU := item.SKU
	if variantSKU == p.SKU {
		variantSKU = ""
	}
	p.RecordInventoryChange(now, variantSKU, item.Quantity, "cancellation "+orderID)
	if p.Status == domain.ProductStatusOutOfStock && p.TotalStock() > 0 {
		p.Status = domain.ProductStatusActive
	}
	p.Recalculate(now)
	p.Touch()
	if err := s.deps.Store.Products.Update(ctx, p.ID, p); err != nil {
		s.deps.logger().Warn("restock failed", "product_id", p.ID, "order_id", orderID, "error", err)
	}
}
