package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Repository manages persistence for stock quantities and the adjustment log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	LockRawMaterial(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error)
	UpdateProductStock(ctx context.Context, id uuid.UUID, quantity int) error
	UpdateRawMaterialStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
	CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error
	ListByTarget(ctx context.Context, target enums.StockTargetType, targetID uuid.UUID) ([]models.StockAdjustment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// locked applies a row lock on drivers that support it. sqlite serializes
// writers on its own.
func (r *repository) locked(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *repository) LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.locked(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) LockRawMaterial(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error) {
	var material models.RawMaterial
	if err := r.locked(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *repository) UpdateProductStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity).Error
}

func (r *repository) UpdateRawMaterialStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.RawMaterial{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity).Error
}

func (r *repository) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	if adjustment.ID == uuid.Nil {
		adjustment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *repository) ListByTarget(ctx context.Context, target enums.StockTargetType, targetID uuid.UUID) ([]models.StockAdjustment, error) {
	var adjustments []models.StockAdjustment
	q := r.db.WithContext(ctx).Where("target_type = ?", target)
	switch target {
	case enums.StockTargetProduct:
		q = q.Where("product_id = ?", targetID)
	case enums.StockTargetRawMaterial:
		q = q.Where("raw_material_id = ?", targetID)
	}
	if err := q.Order("created_at DESC").Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}
