package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawMaterialPurchase records one intake of material from a supplier.
// Immutable once created; TotalPrice = Quantity * UnitPrice.
type RawMaterialPurchase struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseDate  time.Time       `gorm:"column:purchase_date;not null" json:"purchase_date"`
	RawMaterialID uuid.UUID       `gorm:"column:raw_material_id;type:uuid;not null" json:"raw_material_id"`
	SupplierID    uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null" json:"supplier_id"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,4);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null" json:"total_price"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
