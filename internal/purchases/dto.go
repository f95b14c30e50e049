package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// RecordPurchaseInput holds the validated payload for one material intake.
type RecordPurchaseInput struct {
	PurchaseDate  time.Time       `json:"purchase_date"`
	RawMaterialID uuid.UUID       `json:"raw_material_id" validate:"required"`
	SupplierID    uuid.UUID       `json:"supplier_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Actor         string          `json:"-"`
}

// ListPurchasesInput filters the purchase history.
type ListPurchasesInput struct {
	RawMaterialID *uuid.UUID
	SupplierID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Pagination    pagination.Params
}

// PurchaseListResult is one page of purchase records.
type PurchaseListResult struct {
	Purchases  []models.RawMaterialPurchase `json:"purchases"`
	NextCursor string                       `json:"next_cursor,omitempty"`
}
