package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelierhq/atelier-backend/api/controllers"
	"github.com/atelierhq/atelier-backend/api/middleware"
	"github.com/atelierhq/atelier-backend/internal/categories"
	"github.com/atelierhq/atelier-backend/internal/customers"
	"github.com/atelierhq/atelier-backend/internal/ledger"
	"github.com/atelierhq/atelier-backend/internal/materials"
	"github.com/atelierhq/atelier-backend/internal/orders"
	"github.com/atelierhq/atelier-backend/internal/products"
	"github.com/atelierhq/atelier-backend/internal/purchases"
	"github.com/atelierhq/atelier-backend/internal/reports"
	"github.com/atelierhq/atelier-backend/internal/suppliers"
	"github.com/atelierhq/atelier-backend/pkg/config"
	"github.com/atelierhq/atelier-backend/pkg/db"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/logger"
	"github.com/atelierhq/atelier-backend/pkg/metrics"
	"github.com/atelierhq/atelier-backend/pkg/redis"
)

// Services bundles the wired service layer handed to the router.
type Services struct {
	Categories categories.Service
	Customers  customers.Service
	Suppliers  suppliers.Service
	Products   products.Service
	Materials  materials.Service
	Purchases  purchases.Service
	Orders     orders.Service
	Ledger     ledger.Service
	Reports    *reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.Actor(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		if redisClient != nil {
			r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
		} else {
			r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, nil))
		}
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CreateCategory(svcs.Categories, logg))
			r.Get("/", controllers.ListCategories(svcs.Categories, logg))
			r.Get("/{id}", controllers.GetCategory(svcs.Categories, logg))
			r.Put("/{id}", controllers.UpdateCategory(svcs.Categories, logg))
			r.Delete("/{id}", controllers.DeleteCategory(svcs.Categories, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Get("/{id}", controllers.GetCustomer(svcs.Customers, logg))
			r.Put("/{id}", controllers.UpdateCustomer(svcs.Customers, logg))
			r.Delete("/{id}", controllers.DeleteCustomer(svcs.Customers, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", controllers.CreateSupplier(svcs.Suppliers, logg))
			r.Get("/", controllers.ListSuppliers(svcs.Suppliers, logg))
			r.Get("/{id}", controllers.GetSupplier(svcs.Suppliers, logg))
			r.Put("/{id}", controllers.UpdateSupplier(svcs.Suppliers, logg))
			r.Delete("/{id}", controllers.DeleteSupplier(svcs.Suppliers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/{id}", controllers.GetProduct(svcs.Products, logg))
			r.Put("/{id}", controllers.UpdateProduct(svcs.Products, logg))
			r.Delete("/{id}", controllers.DeleteProduct(svcs.Products, logg))
			r.Post("/{id}/adjustments", controllers.ManualStockAdjust(svcs.Ledger, enums.StockTargetProduct, logg))
			r.Get("/{id}/adjustments", controllers.StockHistory(svcs.Ledger, enums.StockTargetProduct, logg))
		})

		r.Route("/raw-materials", func(r chi.Router) {
			r.Post("/", controllers.CreateMaterial(svcs.Materials, logg))
			r.Get("/", controllers.ListMaterials(svcs.Materials, logg))
			r.Get("/{id}", controllers.GetMaterial(svcs.Materials, logg))
			r.Put("/{id}", controllers.UpdateMaterial(svcs.Materials, logg))
			r.Delete("/{id}", controllers.DeleteMaterial(svcs.Materials, logg))
			r.Post("/{id}/adjustments", controllers.ManualStockAdjust(svcs.Ledger, enums.StockTargetRawMaterial, logg))
			r.Get("/{id}/adjustments", controllers.StockHistory(svcs.Ledger, enums.StockTargetRawMaterial, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", controllers.RecordPurchase(svcs.Purchases, logg))
			r.Get("/", controllers.ListPurchases(svcs.Purchases, logg))
			r.Get("/{id}", controllers.GetPurchase(svcs.Purchases, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{id}", controllers.GetOrder(svcs.Orders, logg))
			r.Put("/{id}", controllers.UpdateOrder(svcs.Orders, logg))
			r.Patch("/{id}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			r.Delete("/{id}", controllers.DeleteOrder(svcs.Orders, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.DashboardSummary(svcs.Reports, logg))
			r.Get("/sales", controllers.SalesReport(svcs.Reports, logg))
			r.Get("/material-costs", controllers.MaterialCostReport(svcs.Reports, logg))
		})
	})

	return r
}
