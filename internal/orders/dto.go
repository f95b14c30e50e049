package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// OrderItemInput is one product line on an incoming order payload.
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderInput holds the validated payload to place an order.
type CreateOrderInput struct {
	OrderDate     time.Time           `json:"order_date"`
	CustomerID    uuid.UUID           `json:"customer_id" validate:"required"`
	Status        enums.OrderStatus   `json:"status,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
	Items         []OrderItemInput    `json:"items" validate:"required,min=1,dive"`
	Actor         string              `json:"-"`
}

// UpdateOrderInput holds optional order mutations. Items, when present, is a
// full replacement for the order's line items.
type UpdateOrderInput struct {
	OrderDate     *time.Time           `json:"order_date,omitempty"`
	CustomerID    *uuid.UUID           `json:"customer_id,omitempty"`
	Status        *enums.OrderStatus   `json:"status,omitempty"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	Items         *[]OrderItemInput    `json:"items,omitempty"`
	Actor         string               `json:"-"`
}

// ListOrdersInput filters the order list.
type ListOrdersInput struct {
	CustomerID  *uuid.UUID
	Status      *enums.OrderStatus
	From        *time.Time
	To          *time.Time
	OrderNumber string
	Pagination  pagination.Params
}

// OrderListResult is one page of orders.
type OrderListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
