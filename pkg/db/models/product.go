package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a finished good offered for sale. StockQuantity is a derived
// value: it must always equal the initial quantity plus the sum of every
// StockAdjustment recorded against the product.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"column:name;not null" json:"name"`
	SKU           string          `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Description   *string         `gorm:"column:description" json:"description,omitempty"`
	SellingPrice  decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null" json:"selling_price"`
	CostPrice     decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null" json:"cost_price"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	CategoryID    uuid.UUID       `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	SupplierID    *uuid.UUID      `gorm:"column:supplier_id;type:uuid" json:"supplier_id,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
