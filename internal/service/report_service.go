package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
)

const salesReportCacheKey = "report:sales"

// SalesReport is the aggregate served to managers and admins.
type SalesReport struct {
	OrderCount   int64                     `json:"order_count"`
	Revenue      float64                   `json:"revenue"`
	AverageOrder float64                   `json:"average_order"`
	TopProducts  []repository.ProductSales `json:"top_products"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

type ReportService struct {
	orders repository.OrderRepository
	cache  redis.UniversalClient
	ttl    time.Duration
	group  singleflight.Group
}

func NewReportService(orders repository.OrderRepository, cache redis.UniversalClient, ttl time.Duration) *ReportService {
	return &ReportService{orders: orders, cache: cache, ttl: ttl}
}

// Sales returns the cached report when fresh; cache misses collapse into a
// single database aggregation via singleflight.
func (s *ReportService) Sales(ctx context.Context) (*SalesReport, error) {
	if report, ok := s.fromCache(ctx); ok {
		observability.RecordReportCacheEvent(ctx, "sales", "hit")
		return report, nil
	}
	observability.RecordReportCacheEvent(ctx, "sales", "miss")

	v, err, _ := s.group.Do(salesReportCacheKey, func() (any, error) {
		return s.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SalesReport), nil
}

func (s *ReportService) build(ctx context.Context) (*SalesReport, error) {
	summary, err := s.orders.SalesSummary()
	if err != nil {
		return nil, err
	}
	top, err := s.orders.TopProducts(5)
	if err != nil {
		return nil, err
	}
	report := &SalesReport{
		OrderCount:   summary.OrderCount,
		Revenue:      summary.Revenue,
		AverageOrder: summary.AverageOrder,
		TopProducts:  top,
		GeneratedAt:  time.Now().UTC(),
	}
	s.store(ctx, report)
	return report, nil
}

// Refresh rebuilds the cached report. Used by the scheduled worker job.
func (s *ReportService) Refresh(ctx context.Context) error {
	_, err := s.build(ctx)
	return err
}

func (s *ReportService) fromCache(ctx context.Context) (*SalesReport, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, salesReportCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "report cache read failed", "error", err)
		}
		return nil, false
	}
	var report SalesReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (s *ReportService) store(ctx context.Context, report *SalesReport) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, salesReportCacheKey, raw, s.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "report cache write failed", "error", err)
	}
}
