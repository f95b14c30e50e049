package materials

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Repository defines persistence operations for raw materials.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, material *models.RawMaterial) error
	Save(ctx context.Context, material *models.RawMaterial) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error)
	List(ctx context.Context, input ListMaterialsInput) ([]models.RawMaterial, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a raw material repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, material *models.RawMaterial) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *repository) Save(ctx context.Context, material *models.RawMaterial) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RawMaterial, error) {
	var material models.RawMaterial
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *repository) List(ctx context.Context, input ListMaterialsInput) ([]models.RawMaterial, error) {
	q := r.db.WithContext(ctx).Model(&models.RawMaterial{})

	if input.SupplierID != nil {
		q = q.Where("supplier_id = ?", *input.SupplierID)
	}
	if input.Search != "" {
		q = q.Where("name LIKE ?", "%"+input.Search+"%")
	}
	if input.BelowSafety {
		q = q.Where("stock_quantity < safety_stock")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var out []models.RawMaterial
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RawMaterial{}).Error
}
