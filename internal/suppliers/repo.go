package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
)

// Repository defines persistence operations for suppliers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, supplier *models.Supplier) error
	Save(ctx context.Context, supplier *models.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, search string) ([]models.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a supplier repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *repository) Save(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) List(ctx context.Context, search string) ([]models.Supplier, error) {
	q := r.db.WithContext(ctx).Model(&models.Supplier{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var out []models.Supplier
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Supplier{}).Error
}

// CountReferences totals the products, raw materials, and purchases still
// pointing at the supplier.
func (r *repository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := r.db.WithContext(ctx).Model(&models.RawMaterial{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := r.db.WithContext(ctx).Model(&models.RawMaterialPurchase{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	return total, nil
}
