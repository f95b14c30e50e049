package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// StockAdjustment is one immutable entry in the stock ledger. Exactly one of
// ProductID / RawMaterialID is set, matching TargetType. QuantityAfter minus
// QuantityBefore always equals AdjustmentQuantity. Rows are never updated or
// deleted; they are the audit trail for every quantity change.
type StockAdjustment struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdjustmentDate     time.Time             `gorm:"column:adjustment_date;not null" json:"adjustment_date"`
	TargetType         enums.StockTargetType `gorm:"column:target_type;type:text;not null" json:"target_type"`
	ProductID          *uuid.UUID            `gorm:"column:product_id;type:uuid" json:"product_id,omitempty"`
	RawMaterialID      *uuid.UUID            `gorm:"column:raw_material_id;type:uuid" json:"raw_material_id,omitempty"`
	QuantityBefore     decimal.Decimal       `gorm:"column:quantity_before;type:numeric(14,3);not null" json:"quantity_before"`
	QuantityAfter      decimal.Decimal       `gorm:"column:quantity_after;type:numeric(14,3);not null" json:"quantity_after"`
	AdjustmentQuantity decimal.Decimal       `gorm:"column:adjustment_quantity;type:numeric(14,3);not null" json:"adjustment_quantity"`
	Reason             string                `gorm:"column:reason;not null" json:"reason"`
	CreatedBy          string                `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
