package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/internal/customers"
	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	customersTable := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact TEXT,
  phone TEXT,
  address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	productsTable := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  description TEXT,
  selling_price NUMERIC NOT NULL DEFAULT 0,
  cost_price NUMERIC NOT NULL DEFAULT 0,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL,
  supplier_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  order_date DATETIME NOT NULL,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'other',
  total_amount NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL
);`
	adjustmentsTable := `
CREATE TABLE IF NOT EXISTS stock_adjustments (
  id TEXT PRIMARY KEY,
  adjustment_date DATETIME NOT NULL,
  target_type TEXT NOT NULL,
  product_id TEXT,
  raw_material_id TEXT,
  quantity_before NUMERIC NOT NULL,
  quantity_after NUMERIC NOT NULL,
  adjustment_quantity NUMERIC NOT NULL,
  reason TEXT NOT NULL,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(customersTable).Error)
	require.NoError(t, db.Exec(productsTable).Error)
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItemsTable).Error)
	require.NoError(t, db.Exec(adjustmentsTable).Error)
	return db
}

type dbTxRunner struct{ db *gorm.DB }

func (r dbTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newDBService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	stock, err := ledger.NewService(ledger.NewRepository(db), dbTxRunner{db: db}, nil)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), dbTxRunner{db: db}, stock, customers.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func newDBCustomer(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	customer := &models.Customer{ID: uuid.New(), Name: "Mabel Ortiz"}
	require.NoError(t, db.Create(customer).Error)
	return customer.ID
}

func newDBProduct(t *testing.T, db *gorm.DB, sku string, stock int) uuid.UUID {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          "oak side table",
		SKU:           sku,
		SellingPrice:  decimal.RequireFromString("120.00"),
		CostPrice:     decimal.RequireFromString("45.00"),
		StockQuantity: stock,
		CategoryID:    uuid.New(),
	}
	require.NoError(t, db.Create(product).Error)
	return product.ID
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func productStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.StockQuantity
}

func TestCreateCommitsOrderAndLedgerTogether(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newDBService(t, db)
	customerID := newDBCustomer(t, db)
	productID := newDBProduct(t, db, "OAK-001", 10)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		Items: []OrderItemInput{
			{ProductID: productID, Quantity: 3, UnitPrice: decimal.RequireFromString("120.00")},
		},
		Actor: "clerk",
	})
	require.NoError(t, err)

	stored, err := NewRepository(db).FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("360.00")))

	assert.Equal(t, 7, productStock(t, db, productID))

	var adjustments []models.StockAdjustment
	require.NoError(t, db.Find(&adjustments).Error)
	require.Len(t, adjustments, 1)
	assert.True(t, adjustments[0].QuantityBefore.Equal(decimal.NewFromInt(10)))
	assert.True(t, adjustments[0].QuantityAfter.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "clerk", adjustments[0].CreatedBy)
}

func TestCreateRollsBackOnInsufficientStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newDBService(t, db)
	customerID := newDBCustomer(t, db)
	plenty := newDBProduct(t, db, "OAK-001", 10)
	scarce := newDBProduct(t, db, "OAK-002", 1)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		Items: []OrderItemInput{
			{ProductID: plenty, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: scarce, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientStock, errors.As(err).Code())

	// The first item was decremented before the second failed; the
	// rollback must undo it along with the order rows.
	assert.Equal(t, int64(0), countRows(t, db, &models.Order{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.OrderItem{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.StockAdjustment{}))
	assert.Equal(t, 10, productStock(t, db, plenty))
	assert.Equal(t, 1, productStock(t, db, scarce))
}

func TestRestoreRollsBackWhenStockGone(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newDBService(t, db)
	customerID := newDBCustomer(t, db)
	productID := newDBProduct(t, db, "OAK-001", 10)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderInput{
		CustomerID: customerID,
		Items: []OrderItemInput{
			{ProductID: productID, Quantity: 4, UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled, "clerk")
	require.NoError(t, err)
	require.Equal(t, 10, productStock(t, db, productID))

	// The freed stock is sold off elsewhere before anyone restores.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", 2).Error)
	adjustmentsBefore := countRows(t, db, &models.StockAdjustment{})

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid, "clerk")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientStock, errors.As(err).Code())

	stored, err := NewRepository(db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, stored.Status)
	assert.Equal(t, 2, productStock(t, db, productID))
	assert.Equal(t, adjustmentsBefore, countRows(t, db, &models.StockAdjustment{}))
}
