package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// Repository runs the read-only aggregation queries behind the reports.
type Repository interface {
	Counts(ctx context.Context) (SummaryCounts, error)
	OrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error)
	LowStockMaterials(ctx context.Context, limit int) ([]models.RawMaterial, error)
	CategorySales(ctx context.Context, from, to time.Time) ([]CategorySalesRow, error)
	MonthlySales(ctx context.Context) ([]MonthlySalesRow, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductRow, error)
	TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]TopCustomerRow, error)
	MonthlyCosts(ctx context.Context) ([]MonthlyCostRow, error)
	TopMaterials(ctx context.Context, from, to time.Time, limit int) ([]TopMaterialRow, error)
	SupplierCosts(ctx context.Context, from, to time.Time, limit int) ([]SupplierCostRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a report repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Counts(ctx context.Context) (SummaryCounts, error) {
	var counts SummaryCounts
	q := r.db.WithContext(ctx)
	if err := q.Model(&models.Customer{}).Count(&counts.Customers).Error; err != nil {
		return counts, err
	}
	if err := q.Model(&models.Product{}).Count(&counts.Products).Error; err != nil {
		return counts, err
	}
	if err := q.Model(&models.RawMaterial{}).Count(&counts.RawMaterials).Error; err != nil {
		return counts, err
	}
	if err := q.Model(&models.Order{}).Count(&counts.Orders).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *repository) OrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []struct {
		Status enums.OrderStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *repository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status <> ?", enums.OrderStatusCancelled).
		Scan(&row).Error
	return row.Total, err
}

func (r *repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repository) LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.db.WithContext(ctx).
		Where("stock_quantity <= ?", threshold).
		Order("stock_quantity ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repository) LowStockMaterials(ctx context.Context, limit int) ([]models.RawMaterial, error) {
	var out []models.RawMaterial
	err := r.db.WithContext(ctx).
		Where("safety_stock > 0 AND stock_quantity <= safety_stock").
		Order("stock_quantity / safety_stock ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repository) CategorySales(ctx context.Context, from, to time.Time) ([]CategorySalesRow, error) {
	var out []CategorySalesRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("categories.name AS category, SUM(order_items.subtotal) AS total_sales").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.order_date BETWEEN ? AND ?", from, to).
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Group("categories.name").
		Order("total_sales DESC").
		Scan(&out).Error
	return out, err
}

func (r *repository) MonthlySales(ctx context.Context) ([]MonthlySalesRow, error) {
	var out []MonthlySalesRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(fmt.Sprintf("%s AS year, %s AS month, SUM(total_amount) AS total_sales",
			r.yearExpr("order_date"), r.monthExpr("order_date"))).
		Where("status <> ?", enums.OrderStatusCancelled).
		Group("year, month").
		Order("year, month").
		Scan(&out).Error
	return out, err
}

func (r *repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductRow, error) {
	var out []TopProductRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("products.name AS product, categories.name AS category, " +
			"SUM(order_items.quantity) AS total_quantity, SUM(order_items.subtotal) AS total_sales").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.order_date BETWEEN ? AND ?", from, to).
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Group("products.name, categories.name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *repository) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]TopCustomerRow, error) {
	var out []TopCustomerRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("customers.name AS customer, COUNT(orders.id) AS order_count, SUM(orders.total_amount) AS total_amount").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Where("orders.order_date BETWEEN ? AND ?", from, to).
		Where("orders.status <> ?", enums.OrderStatusCancelled).
		Group("customers.name").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *repository) MonthlyCosts(ctx context.Context) ([]MonthlyCostRow, error) {
	var out []MonthlyCostRow
	err := r.db.WithContext(ctx).
		Table("raw_material_purchases").
		Select(fmt.Sprintf("%s AS year, %s AS month, SUM(total_price) AS total_cost",
			r.yearExpr("purchase_date"), r.monthExpr("purchase_date"))).
		Group("year, month").
		Order("year, month").
		Scan(&out).Error
	return out, err
}

func (r *repository) TopMaterials(ctx context.Context, from, to time.Time, limit int) ([]TopMaterialRow, error) {
	var out []TopMaterialRow
	err := r.db.WithContext(ctx).
		Table("raw_material_purchases").
		Select("raw_materials.name AS material, SUM(raw_material_purchases.quantity) AS total_quantity, " +
			"SUM(raw_material_purchases.total_price) AS total_cost").
		Joins("JOIN raw_materials ON raw_materials.id = raw_material_purchases.raw_material_id").
		Where("raw_material_purchases.purchase_date BETWEEN ? AND ?", from, to).
		Group("raw_materials.name").
		Order("total_cost DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *repository) SupplierCosts(ctx context.Context, from, to time.Time, limit int) ([]SupplierCostRow, error) {
	var out []SupplierCostRow
	err := r.db.WithContext(ctx).
		Table("raw_material_purchases").
		Select("suppliers.name AS supplier, COUNT(raw_material_purchases.id) AS purchase_count, " +
			"SUM(raw_material_purchases.total_price) AS total_cost").
		Joins("JOIN suppliers ON suppliers.id = raw_material_purchases.supplier_id").
		Where("raw_material_purchases.purchase_date BETWEEN ? AND ?", from, to).
		Group("suppliers.name").
		Order("total_cost DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// yearExpr and monthExpr paper over the date extraction differences between
// the supported drivers.
func (r *repository) yearExpr(column string) string {
	if r.db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", column)
	}
	return fmt.Sprintf("EXTRACT(YEAR FROM %s)::int", column)
}

func (r *repository) monthExpr(column string) string {
	if r.db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
	}
	return fmt.Sprintf("EXTRACT(MONTH FROM %s)::int", column)
}
