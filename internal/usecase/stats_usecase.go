package usecase

import (
	"context"
	"fmt"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/cache"

	"github.com/shopspring/decimal"
)

const (
	statsCacheTTL  = 30 * time.Minute
	maxStatsRange  = 366 * 24 * time.Hour
	maxTopProducts = 100
)

// StatsUsecase serves back-office sales figures. Ranges are whole days:
// start is inclusive and end is the last day included.
type StatsUsecase struct {
	repo  domain.StatsRepository
	cache cache.CacheService
}

func NewStatsUsecase(repo domain.StatsRepository, cache cache.CacheService) *StatsUsecase {
	return &StatsUsecase{repo: repo, cache: cache}
}

// dayRange truncates both ends to UTC days and returns [start, end+1d).
func dayRange(start, end time.Time) (time.Time, time.Time, error) {
	from := start.UTC().Truncate(24 * time.Hour)
	to := end.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if !to.After(from) {
		return time.Time{}, time.Time{}, domain.NewValidationError("end", "must not be before start")
	}
	if to.Sub(from) > maxStatsRange {
		return time.Time{}, time.Time{}, domain.NewValidationError("end", "range cannot exceed one year")
	}
	return from, to, nil
}

func statsKey(name string, from, to time.Time, extra ...interface{}) string {
	key := fmt.Sprintf("stats:%s:%s:%s", name, from.Format("2006-01-02"), to.Format("2006-01-02"))
	for _, e := range extra {
		key += fmt.Sprintf(":%v", e)
	}
	return key
}

func (uc *StatsUsecase) GetRevenueKPIs(ctx context.Context, start, end time.Time) (*domain.SalesKPIs, error) {
	from, to, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(uc.cache, statsKey("kpis", from, to), statsCacheTTL, func() (*domain.SalesKPIs, error) {
		kpis, err := uc.repo.GetRevenueKPIs(ctx, from, to)
		if err != nil {
			return nil, err
		}
		if paid := kpis.OrderCount - kpis.CancelledCount; paid > 0 {
			kpis.AverageOrderValue = kpis.Revenue.Div(decimal.NewFromInt(paid)).Round(2)
		}
		return kpis, nil
	})
}

func (uc *StatsUsecase) GetDailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	from, to, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(uc.cache, statsKey("daily_sales", from, to), statsCacheTTL, func() ([]domain.DailySales, error) {
		days, err := uc.repo.GetDailySales(ctx, from, to)
		if err != nil {
			return nil, err
		}
		if days == nil {
			days = []domain.DailySales{}
		}
		return days, nil
	})
}

func (uc *StatsUsecase) GetTopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]domain.TopProduct, error) {
	from, to, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxTopProducts {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxTopProducts))
	}
	return cache.Fetch(uc.cache, statsKey("top_products", from, to, limit), statsCacheTTL, func() ([]domain.TopProduct, error) {
		products, err := uc.repo.GetTopSellingProducts(ctx, from, to, limit)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []domain.TopProduct{}
		}
		return products, nil
	})
}
