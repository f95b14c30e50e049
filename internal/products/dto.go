package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string          `json:"name" validate:"required"`
	SKU           string          `json:"sku" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	CategoryID    uuid.UUID       `json:"category_id" validate:"required"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Actor         string          `json:"-"`
}

// UpdateProductInput holds optional mutation values for a product. A nil
// field leaves the current value untouched.
type UpdateProductInput struct {
	Name          *string          `json:"name,omitempty"`
	SKU           *string          `json:"sku,omitempty"`
	Description   *string          `json:"description,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	SupplierID    *uuid.UUID       `json:"supplier_id,omitempty"`
	Actor         string           `json:"-"`
}

// ListProductsInput filters the product list.
type ListProductsInput struct {
	CategoryID    *uuid.UUID
	Search        string
	LowStockBelow *int
	Pagination    pagination.Params
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
