package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListOrdersInput) ([]models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// Save persists order header fields without touching the item rows.
func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, input ListOrdersInput) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")

	if input.CustomerID != nil {
		q = q.Where("customer_id = ?", *input.CustomerID)
	}
	if input.Status != nil {
		q = q.Where("status = ?", *input.Status)
	}
	if input.From != nil {
		q = q.Where("order_date >= ?", *input.From)
	}
	if input.To != nil {
		q = q.Where("order_date <= ?", *input.To)
	}
	if input.OrderNumber != "" {
		q = q.Where("order_number LIKE ?", "%"+input.OrderNumber+"%")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var out []models.Order
	err = q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{}).Error
}

// ReplaceItems swaps the order's line items for the provided set.
func (r *repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return tx.Create(&items).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
