package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createOrder",
		Method:        http.MethodPost,
		Path:          "/api/v1/orders",
		Summary:       "Create order",
		Description:   "Places an order, snapshotting product data and reducing stock",
		Tags:          []string{"Orders"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Tags:        []string{"Orders"},
	}, s.handleGetOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrderByNumber",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/number/{number}",
		Summary:     "Get order by number",
		Tags:        []string{"Orders"},
	}, s.handleGetOrderByNumber)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Lists orders, optionally filtered by status or user",
		Tags:        []string{"Orders"},
	}, s.handleListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateOrderStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/orders/{id}/status",
		Summary:     "Update order status",
		Tags:        []string{"Orders"},
	}, s.handleUpdateOrderStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePaymentStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/orders/{id}/payment-status",
		Summary:     "Update payment status",
		Tags:        []string{"Orders"},
	}, s.handleUpdatePaymentStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateFulfillmentStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/orders/{id}/fulfillment-status",
		Summary:     "Update fulfillment status",
		Tags:        []string{"Orders"},
	}, s.handleUpdateFulfillmentStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/cancel",
		Summary:     "Cancel order",
		Description: "Cancels an order that has not shipped and restocks its items",
		Tags:        []string{"Orders"},
	}, s.handleCancelOrder)
}

// === DTOs ===

// OrderOutput wraps a single order for Huma.
type OrderOutput struct {
	Body domain.Order
}

// CreateOrderInput wraps the create order request for Huma.
type CreateOrderInput struct {
	Body service.CreateOrderParams
}

// OrderIDInput identifies an order by ID.
type OrderIDInput struct {
	ID string `path:"id" doc:"Order ID"`
}

// OrderNumberInput identifies an order by its human-readable number.
type OrderNumberInput struct {
	Number string `path:"number" doc:"Order number, e.g. ORD-20260115-A3F29C"`
}

// ListOrdersInput contains filters for listing orders.
type ListOrdersInput struct {
	User   string `query:"user" doc:"Filter by owning user ID"`
	Status string `query:"status" doc:"Filter by order status" enum:"pending,confirmed,processing,shipped,delivered,cancelled,refunded"`
}

// ListOrdersOutput wraps the order list for Huma.
type ListOrdersOutput struct {
	Body struct {
		Orders []*domain.Order `json:"orders" doc:"List of orders"`
	}
}

// OrderStatusInput wraps an order status transition for Huma.
type OrderStatusInput struct {
	ID   string `path:"id" doc:"Order ID"`
	Body struct {
		Status string `json:"status" doc:"Target status"`
	}
}

// CancelOrderInput wraps an order cancellation for Huma.
type CancelOrderInput struct {
	ID   string `path:"id" doc:"Order ID"`
	Body struct {
		Reason string `json:"reason,omitempty" doc:"Cancellation reason appended to the order notes"`
	}
}

// === Handlers ===

func (s *Server) handleCreateOrder(ctx context.Context, input *CreateOrderInput) (*OrderOutput, error) {
	order, err := s.services.Orders.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	order, err := s.services.Orders.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}

func (s *Server) handleGetOrderByNumber(ctx context.Context, input *OrderNumberInput) (*OrderOutput, error) {
	order, err := s.services.Orders.GetByNumber(ctx, input.Number)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}

func (s *Server) handleListOrders(ctx context.Context, input *ListOrdersInput) (*ListOrdersOutput, error) {
	var (
		orders []*domain.Order
		err    error
	)
	if input.User != "" {
		orders, err = s.services.Orders.ListForUser(ctx, input.User)
	} else {
		orders, err = s.services.Orders.List(ctx, domain.OrderStatus(input.Status))
	}
	if err != nil {
		return nil, err
	}
	out := &ListOrdersOutput{}
	out.Body.Orders = orders
	return out, nil
}

func (s *Server) handleUpdateOrderStatus(ctx context.Context, input *OrderStatusInput) (*OrderOutput, error) {
	order, err := s.services.Orders.UpdateStatus(ctx, input.ID, domain.OrderStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}

func (s *Server) handleUpdatePaymentStatus(ctx context.Context, input *OrderStatusInput) (*OrderOutput, error) {
	order, err := s.services.Orders.UpdatePaymentStatus(ctx, input.ID, domain.PaymentStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}

func (s *Server) handleUpdateFulfillmentStatus(ctx context.Context, input *OrderStatusInput) (*OrderOutput, error) {
	order, err := s.services.Orders.UpdateFulfillmentStatus(ctx, input.ID, domain.FulfillmentStatus(input.Body.Status))
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}

func (s *Server) handleCancelOrder(ctx context.Context, input *CancelOrderInput) (*OrderOutput, error) {
	order, err := s.services.Orders.Cancel(ctx, input.ID, input.Body.Reason)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: *order}, nil
}
