package materials

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// CreateMaterialInput holds the validated payload to register a raw material.
type CreateMaterialInput struct {
	Name          string          `json:"name" validate:"required"`
	Unit          string          `json:"unit" validate:"required"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	SafetyStock   decimal.Decimal `json:"safety_stock"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Actor         string          `json:"-"`
}

// UpdateMaterialInput holds optional mutation values. A nil field leaves the
// current value untouched.
type UpdateMaterialInput struct {
	Name          *string          `json:"name,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	StockQuantity *decimal.Decimal `json:"stock_quantity,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	SafetyStock   *decimal.Decimal `json:"safety_stock,omitempty"`
	SupplierID    *uuid.UUID       `json:"supplier_id,omitempty"`
	Actor         string           `json:"-"`
}

// ListMaterialsInput filters the raw material list.
type ListMaterialsInput struct {
	SupplierID  *uuid.UUID
	Search      string
	BelowSafety bool
	Pagination  pagination.Params
}

// MaterialListResult is one page of raw materials.
type MaterialListResult struct {
	Materials  []models.RawMaterial `json:"materials"`
	NextCursor string               `json:"next_cursor,omitempty"`
}
