// Package domain contains the core business entities for the Meridian back-office.
package domain

import (
	"time"
)

// OrderStatus represents the state of a customer order.
type OrderStatus string

const (
	// OrderPending is the initial state of a new order.
	OrderPending OrderStatus = "pending"

	// OrderProcessing means the order is being prepared.
	OrderProcessing OrderStatus = "processing"

	// OrderShipped means the order has left the warehouse.
	OrderShipped OrderStatus = "shipped"

	// OrderDelivered means the order reached the customer. Terminal for
	// display purposes.
	OrderDelivered OrderStatus = "delivered"

	// OrderCancelled means the order was cancelled. Terminal for display
	// purposes, reachable from any non-terminal state.
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatusOrder is the canonical progression of the workflow. The
// base design does not enforce it on updates (any known status may be
// set from any other), but stricter callers can validate against it.
var OrderStatusOrder = []OrderStatus{
	OrderPending,
	OrderProcessing,
	OrderShipped,
	OrderDelivered,
}

// ValidOrderStatuses is the full set of accepted status values.
var ValidOrderStatuses = []OrderStatus{
	OrderPending,
	OrderProcessing,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
}

// IsValid reports whether the status is one of the known values.
func (s OrderStatus) IsValid() bool {
	for _, v := range ValidOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the UI treats the status as final.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order represents a customer order.
type Order struct {
	// ID is the unique identifier for the order (auto-generated).
	ID int64 `json:"id"`

	// CustomerID references the user who placed the order.
	CustomerID int64 `json:"customer_id"`

	// Status is the current workflow state.
	Status OrderStatus `json:"status"`

	// TotalPrice is the order total.
	TotalPrice float64 `json:"total_price"`

	// CreatedAt is the timestamp when the order was placed.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the order was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a line item on an order. Its existence is the signal that
// decides product deletion policy: a product referenced by at least one
// order item is soft-deleted rather than removed.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderSummary is an order joined with display names for the list view.
type OrderSummary struct {
	Order
	CustomerAccount string `json:"customer_account"`
	CustomerName    string `json:"customer_name"`
}

// OrderStats holds the aggregate figures for the order dashboard.
// All values are recomputed per request; nothing is cached.
type OrderStats struct {
	TotalOrders       int64                 `json:"total_orders"`
	TotalRevenue      float64               `json:"total_revenue"`
	AverageOrderValue float64               `json:"average_order_value"`
	CountByStatus     map[OrderStatus]int64 `json:"count_by_status"`
}
