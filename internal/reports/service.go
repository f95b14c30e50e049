package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/atelierhq/atelier-backend/pkg/config"
	"github.com/atelierhq/atelier-backend/pkg/errors"
	"github.com/atelierhq/atelier-backend/pkg/logger"
)

const (
	recentOrderLimit = 5
	lowStockLimit    = 20
	topRowLimit      = 10
)

// Cache is the slice of the redis client the service needs. A nil cache
// disables caching and every call hits the database.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ReportKey(parts ...string) string
}

// Service produces the dashboard summary and the sales / material cost
// reports. Aggregations are cached for a short TTL when redis is configured;
// cache failures are logged and the query falls through to the database.
type Service struct {
	repo  Repository
	cache Cache
	cfg   config.ReportsConfig
	log   *logger.Logger

	now func() time.Time
}

func NewService(repo Repository, cache Cache, cfg config.ReportsConfig, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Summary builds the dashboard payload.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.ReportKey("summary")
		if cached, ok := s.fromCache(ctx, key, &Summary{}); ok {
			return cached.(*Summary), nil
		}
	}

	var summary Summary
	var err error
	if summary.Counts, err = s.repo.Counts(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "counting entities")
	}
	if summary.OrdersByStatus, err = s.repo.OrdersByStatus(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "counting orders by status")
	}
	if summary.Revenue, err = s.repo.Revenue(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "summing revenue")
	}
	if summary.RecentOrders, err = s.repo.RecentOrders(ctx, recentOrderLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading recent orders")
	}
	if summary.LowStockProducts, err = s.repo.LowStockProducts(ctx, s.cfg.LowStockThreshold, lowStockLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading low stock products")
	}
	if summary.LowStockMaterials, err = s.repo.LowStockMaterials(ctx, lowStockLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading low stock materials")
	}

	s.toCache(ctx, key, &summary)
	return &summary, nil
}

// Sales builds the revenue report for the given range. Zero bounds default to
// the start of the current month and now.
func (s *Service) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	from, to = s.normalizeRange(from, to)
	if to.Before(from) {
		return nil, errors.New(errors.CodeValidation, "report range end precedes start")
	}

	key := ""
	if s.cache != nil {
		key = s.cache.ReportKey("sales", from.Format(time.DateOnly), to.Format(time.DateOnly))
		if cached, ok := s.fromCache(ctx, key, &SalesReport{}); ok {
			return cached.(*SalesReport), nil
		}
	}

	report := SalesReport{
		From: from.Format(time.DateOnly),
		To:   to.Format(time.DateOnly),
	}
	var err error
	if report.CategorySales, err = s.repo.CategorySales(ctx, from, to); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "aggregating category sales")
	}
	if report.MonthlySales, err = s.repo.MonthlySales(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "aggregating monthly sales")
	}
	if report.TopProducts, err = s.repo.TopProducts(ctx, from, to, topRowLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "ranking products")
	}
	if report.TopCustomers, err = s.repo.TopCustomers(ctx, from, to, topRowLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "ranking customers")
	}

	s.toCache(ctx, key, &report)
	return &report, nil
}

// MaterialCost builds the purchase spend report for the given range. Zero
// bounds default the same way Sales does.
func (s *Service) MaterialCost(ctx context.Context, from, to time.Time) (*MaterialCostReport, error) {
	from, to = s.normalizeRange(from, to)
	if to.Before(from) {
		return nil, errors.New(errors.CodeValidation, "report range end precedes start")
	}

	key := ""
	if s.cache != nil {
		key = s.cache.ReportKey("material-cost", from.Format(time.DateOnly), to.Format(time.DateOnly))
		if cached, ok := s.fromCache(ctx, key, &MaterialCostReport{}); ok {
			return cached.(*MaterialCostReport), nil
		}
	}

	report := MaterialCostReport{
		From: from.Format(time.DateOnly),
		To:   to.Format(time.DateOnly),
	}
	var err error
	if report.MonthlyCosts, err = s.repo.MonthlyCosts(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "aggregating monthly costs")
	}
	if report.TopMaterials, err = s.repo.TopMaterials(ctx, from, to, topRowLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "ranking materials")
	}
	if report.SupplierCosts, err = s.repo.SupplierCosts(ctx, from, to, topRowLimit); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "ranking suppliers")
	}

	s.toCache(ctx, key, &report)
	return &report, nil
}

// normalizeRange fills zero bounds: from defaults to the first day of the
// current month, to defaults to now. The end bound is stretched to the end of
// its day so a date-only "to" includes that day's rows.
func (s *Service) normalizeRange(from, to time.Time) (time.Time, time.Time) {
	now := s.now().UTC()
	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = now
	} else {
		to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, to.Location())
	}
	return from, to
}

func (s *Service) fromCache(ctx context.Context, key string, dest any) (any, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.warn(ctx, key, err, "discarding malformed cached report")
		return nil, false
	}
	return dest, true
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil || key == "" {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.warn(ctx, key, err, "skipping report cache write")
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.SummaryCacheTTL); err != nil {
		s.warn(ctx, key, err, "report cache write failed")
	}
}

func (s *Service) warn(ctx context.Context, key string, err error, msg string) {
	if s.log == nil {
		return
	}
	ctx = s.log.WithFields(ctx, map[string]any{"cache_key": key, "cause": err.Error()})
	s.log.Warn(ctx, msg)
}
