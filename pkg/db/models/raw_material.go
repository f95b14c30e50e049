package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawMaterial is an input good consumed by production. Quantities are decimal
// because materials are measured in fractional units (kg, m). UnitCost is a
// quantity-weighted moving average recomputed on every purchase.
type RawMaterial struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"column:name;not null" json:"name"`
	Unit          string          `gorm:"column:unit;not null" json:"unit"`
	StockQuantity decimal.Decimal `gorm:"column:stock_quantity;type:numeric(14,3);not null;default:0" json:"stock_quantity"`
	UnitCost      decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,4);not null" json:"unit_cost"`
	SafetyStock   decimal.Decimal `gorm:"column:safety_stock;type:numeric(14,3);not null;default:0" json:"safety_stock"`
	SupplierID    *uuid.UUID      `gorm:"column:supplier_id;type:uuid" json:"supplier_id,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
