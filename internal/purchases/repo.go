package purchases

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Repository defines persistence for purchase records. Purchases are
// append-only; there are no update or delete operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, purchase *models.RawMaterialPurchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RawMaterialPurchase, error)
	List(ctx context.Context, input ListPurchasesInput) ([]models.RawMaterialPurchase, error)
	FindMaterial(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error)
	UpdateMaterialCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchase repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, purchase *models.RawMaterialPurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RawMaterialPurchase, error) {
	var purchase models.RawMaterialPurchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) List(ctx context.Context, input ListPurchasesInput) ([]models.RawMaterialPurchase, error) {
	q := r.db.WithContext(ctx).Model(&models.RawMaterialPurchase{})

	if input.RawMaterialID != nil {
		q = q.Where("raw_material_id = ?", *input.RawMaterialID)
	}
	if input.SupplierID != nil {
		q = q.Where("supplier_id = ?", *input.SupplierID)
	}
	if input.From != nil {
		q = q.Where("purchase_date >= ?", *input.From)
	}
	if input.To != nil {
		q = q.Where("purchase_date <= ?", *input.To)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var out []models.RawMaterialPurchase
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) FindMaterial(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error) {
	var material models.RawMaterial
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *repository) UpdateMaterialCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.RawMaterial{}).
		Where("id = ?", id).
		Update("unit_cost", cost).Error
}
