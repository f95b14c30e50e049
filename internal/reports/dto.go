package reports

import (
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
)

// SummaryCounts are the headline entity totals for the dashboard.
type SummaryCounts struct {
	Customers    int64 `json:"customers"`
	Products     int64 `json:"products"`
	RawMaterials int64 `json:"raw_materials"`
	Orders       int64 `json:"orders"`
}

// Summary is the dashboard payload: counts, order status breakdown, revenue
// excluding cancelled orders, and the low stock watchlists.
type Summary struct {
	Counts            SummaryCounts               `json:"counts"`
	OrdersByStatus    map[enums.OrderStatus]int64 `json:"orders_by_status"`
	Revenue           decimal.Decimal             `json:"revenue"`
	RecentOrders      []models.Order              `json:"recent_orders"`
	LowStockProducts  []models.Product            `json:"low_stock_products"`
	LowStockMaterials []models.RawMaterial        `json:"low_stock_materials"`
}

// CategorySalesRow is revenue grouped by product category.
type CategorySalesRow struct {
	Category   string          `json:"category"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// MonthlySalesRow is revenue grouped by calendar month.
type MonthlySalesRow struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// TopProductRow ranks products by units sold in the range.
type TopProductRow struct {
	Product       string          `json:"product"`
	Category      string          `json:"category"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

// TopCustomerRow ranks customers by spend in the range.
type TopCustomerRow struct {
	Customer    string          `json:"customer"`
	OrderCount  int64           `json:"order_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SalesReport aggregates order revenue over a date range. Cancelled orders
// are excluded everywhere.
type SalesReport struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	CategorySales []CategorySalesRow `json:"category_sales"`
	MonthlySales  []MonthlySalesRow  `json:"monthly_sales"`
	TopProducts   []TopProductRow    `json:"top_products"`
	TopCustomers  []TopCustomerRow   `json:"top_customers"`
}

// MonthlyCostRow is purchase spend grouped by calendar month.
type MonthlyCostRow struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// TopMaterialRow ranks materials by purchase spend in the range.
type TopMaterialRow struct {
	Material      string          `json:"material"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// SupplierCostRow ranks suppliers by purchase spend in the range.
type SupplierCostRow struct {
	Supplier      string          `json:"supplier"`
	PurchaseCount int64           `json:"purchase_count"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// MaterialCostReport aggregates raw material purchase spend over a range.
type MaterialCostReport struct {
	From          string            `json:"from"`
	To            string            `json:"to"`
	MonthlyCosts  []MonthlyCostRow  `json:"monthly_costs"`
	TopMaterials  []TopMaterialRow  `json:"top_materials"`
	SupplierCosts []SupplierCostRow `json:"supplier_costs"`
}
