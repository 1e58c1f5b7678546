package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesKPIs summarizes orders placed in a date range. Cancelled and refunded
// orders are counted but contribute no revenue.
type SalesKPIs struct {
	OrderCount        int64           `json:"orderCount"`
	CancelledCount    int64           `json:"cancelledCount"`
	Revenue           decimal.Decimal `json:"revenue"`
	ShippingCollected decimal.Decimal `json:"shippingCollected"`
	TaxCollected      decimal.Decimal `json:"taxCollected"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type DailySales struct {
	Day        time.Time       `json:"day"`
	OrderCount int64           `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// StatsRepository reads over [start, end).
type StatsRepository interface {
	GetRevenueKPIs(ctx context.Context, start, end time.Time) (*SalesKPIs, error)
	GetDailySales(ctx context.Context, start, end time.Time) ([]DailySales, error)
	GetTopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error)
}
