package reports

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier-backend/pkg/config"
	"github.com/atelierhq/atelier-backend/pkg/db/models"
	"github.com/atelierhq/atelier-backend/pkg/enums"
	"github.com/atelierhq/atelier-backend/pkg/errors"
)

type fakeReportRepo struct {
	counts   SummaryCounts
	statuses map[enums.OrderStatus]int64
	revenue  decimal.Decimal

	calls int

	categorySales []CategorySalesRow
	topProducts   []TopProductRow

	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeReportRepo) Counts(context.Context) (SummaryCounts, error) {
	f.calls++
	return f.counts, nil
}

func (f *fakeReportRepo) OrdersByStatus(context.Context) (map[enums.OrderStatus]int64, error) {
	return f.statuses, nil
}

func (f *fakeReportRepo) Revenue(context.Context) (decimal.Decimal, error) {
	return f.revenue, nil
}

func (f *fakeReportRepo) RecentOrders(context.Context, int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeReportRepo) LowStockProducts(_ context.Context, threshold, _ int) ([]models.Product, error) {
	return []models.Product{{Name: "Candle", StockQuantity: threshold - 1}}, nil
}

func (f *fakeReportRepo) LowStockMaterials(context.Context, int) ([]models.RawMaterial, error) {
	return nil, nil
}

func (f *fakeReportRepo) CategorySales(_ context.Context, from, to time.Time) ([]CategorySalesRow, error) {
	f.calls++
	f.lastFrom, f.lastTo = from, to
	return f.categorySales, nil
}

func (f *fakeReportRepo) MonthlySales(context.Context) ([]MonthlySalesRow, error) {
	return nil, nil
}

func (f *fakeReportRepo) TopProducts(context.Context, time.Time, time.Time, int) ([]TopProductRow, error) {
	return f.topProducts, nil
}

func (f *fakeReportRepo) TopCustomers(context.Context, time.Time, time.Time, int) ([]TopCustomerRow, error) {
	return nil, nil
}

func (f *fakeReportRepo) MonthlyCosts(context.Context) ([]MonthlyCostRow, error) {
	f.calls++
	return []MonthlyCostRow{{Year: 2026, Month: 8, TotalCost: decimal.RequireFromString("120.50")}}, nil
}

func (f *fakeReportRepo) TopMaterials(context.Context, time.Time, time.Time, int) ([]TopMaterialRow, error) {
	return nil, nil
}

func (f *fakeReportRepo) SupplierCosts(context.Context, time.Time, time.Time, int) ([]SupplierCostRow, error) {
	return nil, nil
}

type fakeCache struct {
	store  map[string]string
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.store[key]
	if !ok {
		return "", errors.New(errors.CodeNotFound, "cache miss")
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	switch v := value.(type) {
	case []byte:
		f.store[key] = string(v)
	case string:
		f.store[key] = v
	}
	return nil
}

func (f *fakeCache) ReportKey(parts ...string) string {
	return "atelier:report:" + strings.Join(parts, ":")
}

func testReportsConfig() config.ReportsConfig {
	return config.ReportsConfig{SummaryCacheTTL: time.Minute, LowStockThreshold: 10}
}

func TestSummaryAggregates(t *testing.T) {
	repo := &fakeReportRepo{
		counts:   SummaryCounts{Customers: 3, Products: 7, RawMaterials: 4, Orders: 12},
		statuses: map[enums.OrderStatus]int64{enums.OrderStatusPending: 2, enums.OrderStatusCompleted: 9},
		revenue:  decimal.RequireFromString("845.90"),
	}
	svc := NewService(repo, nil, testReportsConfig(), nil)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Counts.Orders != 12 {
		t.Errorf("order count = %d, want 12", summary.Counts.Orders)
	}
	if !summary.Revenue.Equal(decimal.RequireFromString("845.90")) {
		t.Errorf("revenue = %s, want 845.90", summary.Revenue)
	}
	if summary.OrdersByStatus[enums.OrderStatusPending] != 2 {
		t.Errorf("pending orders = %d, want 2", summary.OrdersByStatus[enums.OrderStatusPending])
	}
	if len(summary.LowStockProducts) != 1 || summary.LowStockProducts[0].StockQuantity != 9 {
		t.Errorf("low stock products = %+v, want one row under the threshold", summary.LowStockProducts)
	}
}

func TestSummaryServedFromCache(t *testing.T) {
	repo := &fakeReportRepo{counts: SummaryCounts{Orders: 1}}
	cache := newFakeCache()
	svc := NewService(repo, cache, testReportsConfig(), nil)

	if _, err := svc.Summary(context.Background()); err != nil {
		t.Fatalf("first Summary: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("repo calls after warm = %d, want 1", repo.calls)
	}

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("second Summary: %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("repo calls after cache hit = %d, want 1", repo.calls)
	}
	if summary.Counts.Orders != 1 {
		t.Errorf("cached order count = %d, want 1", summary.Counts.Orders)
	}
}

func TestSummaryCacheFailureFallsThrough(t *testing.T) {
	repo := &fakeReportRepo{counts: SummaryCounts{Orders: 5}}
	cache := newFakeCache()
	cache.getErr = errors.New(errors.CodeInternal, "connection refused")
	cache.setErr = cache.getErr
	svc := NewService(repo, cache, testReportsConfig(), nil)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary with broken cache: %v", err)
	}
	if summary.Counts.Orders != 5 {
		t.Errorf("order count = %d, want 5", summary.Counts.Orders)
	}
}

func TestSalesDefaultsToCurrentMonth(t *testing.T) {
	repo := &fakeReportRepo{
		categorySales: []CategorySalesRow{{Category: "Ceramics", TotalSales: decimal.RequireFromString("300")}},
	}
	svc := NewService(repo, nil, testReportsConfig(), nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 18, 14, 30, 0, 0, time.UTC)
	}

	report, err := svc.Sales(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if report.From != "2026-08-01" {
		t.Errorf("from = %s, want 2026-08-01", report.From)
	}
	if report.To != "2026-08-18" {
		t.Errorf("to = %s, want 2026-08-18", report.To)
	}
	if got := repo.lastFrom; !got.Equal(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("query lower bound = %s", got)
	}
	if len(report.CategorySales) != 1 || report.CategorySales[0].Category != "Ceramics" {
		t.Errorf("category sales = %+v", report.CategorySales)
	}
}

func TestSalesExplicitRangeIncludesEndDay(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo, nil, testReportsConfig(), nil)

	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Sales(context.Background(), from, to); err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if repo.lastTo.Hour() != 23 || repo.lastTo.Day() != 31 {
		t.Errorf("query upper bound = %s, want end of July 31", repo.lastTo)
	}
}

func TestSalesRejectsInvertedRange(t *testing.T) {
	svc := NewService(&fakeReportRepo{}, nil, testReportsConfig(), nil)

	from := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Sales(context.Background(), from, to)
	if errors.As(err).Code() != errors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestMaterialCostCachedRoundTrip(t *testing.T) {
	repo := &fakeReportRepo{}
	cache := newFakeCache()
	svc := NewService(repo, cache, testReportsConfig(), nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)
	}

	first, err := svc.MaterialCost(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("MaterialCost: %v", err)
	}
	if len(first.MonthlyCosts) != 1 || !first.MonthlyCosts[0].TotalCost.Equal(decimal.RequireFromString("120.50")) {
		t.Fatalf("monthly costs = %+v", first.MonthlyCosts)
	}

	raw, ok := cache.store["atelier:report:material-cost:2026-08-01:2026-08-20"]
	if !ok {
		t.Fatalf("expected cached report, keys = %v", cache.store)
	}
	var cached MaterialCostReport
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("unmarshal cached report: %v", err)
	}

	second, err := svc.MaterialCost(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("second MaterialCost: %v", err)
	}
	if repo.calls != 1 {
		t.Errorf("repo calls = %d, want 1", repo.calls)
	}
	if second.From != first.From || second.To != first.To {
		t.Errorf("cached range %s..%s, want %s..%s", second.From, second.To, first.From, first.To)
	}
}
