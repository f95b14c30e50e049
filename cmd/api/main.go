package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/atelierhq/atelier-backend/api/routes"
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
	"github.com/atelierhq/atelier-backend/pkg/logger"
	"github.com/atelierhq/atelier-backend/pkg/metrics"
	"github.com/atelierhq/atelier-backend/pkg/migrate"
	"github.com/atelierhq/atelier-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, report caching disabled")
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	stockMetrics := metrics.NewStockMetrics(registry)

	gormDB := dbClient.DB()
	categoryRepo := categories.NewRepository(gormDB)
	supplierRepo := suppliers.NewRepository(gormDB)
	customerRepo := customers.NewRepository(gormDB)

	ledgerService, err := ledger.NewService(ledger.NewRepository(gormDB), dbClient, stockMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(gormDB), dbClient, ledgerService, categoryRepo, supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	materialService, err := materials.NewService(materials.NewRepository(gormDB), dbClient, ledgerService, supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create raw material service", err)
		os.Exit(1)
	}

	purchaseService, err := purchases.NewService(purchases.NewRepository(gormDB), dbClient, ledgerService, supplierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(gormDB), dbClient, ledgerService, customerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	reportService := reports.NewService(reports.NewRepository(gormDB), cacheOrNil(redisClient), cfg.Reports, logg)

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, registry, routes.Services{
		Categories: categoryService,
		Customers:  customerService,
		Suppliers:  supplierService,
		Products:   productService,
		Materials:  materialService,
		Purchases:  purchaseService,
		Orders:     orderService,
		Ledger:     ledgerService,
		Reports:    reportService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		ctx = logg.WithField(ctx, "signal", sig.String())
		logg.Info(ctx, "shutting down api server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

// cacheOrNil keeps a typed nil redis client from reaching the reports service
// as a non-nil interface.
func cacheOrNil(client *redis.Client) reports.Cache {
	if client == nil {
		return nil
	}
	return client
}
