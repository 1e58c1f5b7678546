package usecase

import (
	"context"
	"testing"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStatsOrder(t *testing.T, s *shop, at time.Time, status, productID string, qty int, unit string) {
	t.Helper()
	line := money.LineTotal(money.MustParse(unit), qty)
	shipping := money.MustParse("7")
	o := &domain.Order{
		Status:       status,
		Subtotal:     line,
		ShippingCost: shipping,
		Total:        line.Add(shipping),
		CreatedAt:    at,
		Items: []domain.OrderItem{{
			ProductID: productID, Name: productID, UnitPrice: money.MustParse(unit), Quantity: qty, LineTotal: line,
		}},
	}
	require.NoError(t, s.orders.CreateOrder(context.Background(), o))
}

func TestStats_RevenueKPIs(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seedStatsOrder(t, s, day.Add(9*time.Hour), domain.OrderStatusPending, "vase", 2, "150")
	seedStatsOrder(t, s, day.Add(23*time.Hour), domain.OrderStatusDelivered, "rug", 1, "300")
	seedStatsOrder(t, s, day.Add(12*time.Hour), domain.OrderStatusCancelled, "vase", 5, "150")
	seedStatsOrder(t, s, day.AddDate(0, 0, 1), domain.OrderStatusPending, "vase", 1, "150")

	kpis, err := s.statsUC.GetRevenueKPIs(ctx, day, day)
	require.NoError(t, err)
	assert.Equal(t, int64(3), kpis.OrderCount)
	assert.Equal(t, int64(1), kpis.CancelledCount)
	assert.Equal(t, "614", kpis.Revenue.String())
	assert.Equal(t, "14", kpis.ShippingCollected.String())
	assert.Equal(t, "307", kpis.AverageOrderValue.String())

	_, err = s.statsUC.GetRevenueKPIs(ctx, day, day)
	require.NoError(t, err)
	assert.Equal(t, 1, s.stats.Calls)
}

func TestStats_DailySalesAndTopProducts(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seedStatsOrder(t, s, day.Add(time.Hour), domain.OrderStatusPending, "vase", 2, "150")
	seedStatsOrder(t, s, day.AddDate(0, 0, 2).Add(time.Hour), domain.OrderStatusShipped, "rug", 3, "300")
	seedStatsOrder(t, s, day.AddDate(0, 0, 2).Add(2*time.Hour), domain.OrderStatusRefunded, "vase", 9, "150")

	days, err := s.statsUC.GetDailySales(ctx, day, day.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, day, days[0].Day)
	assert.Equal(t, "307", days[0].Revenue.String())
	assert.Equal(t, int64(1), days[1].OrderCount)

	top, err := s.statsUC.GetTopSellingProducts(ctx, day, day.AddDate(0, 0, 6), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "rug", top[0].ProductID)
	assert.Equal(t, int64(3), top[0].UnitsSold)

	empty, err := s.statsUC.GetDailySales(ctx, day.AddDate(1, 0, 0), day.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStats_RangeValidation(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.statsUC.GetRevenueKPIs(ctx, day, day.AddDate(0, 0, -1))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "end")

	_, err = s.statsUC.GetDailySales(ctx, day, day.AddDate(2, 0, 0))
	require.ErrorAs(t, err, &verr)

	_, err = s.statsUC.GetTopSellingProducts(ctx, day, day, 0)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "limit")
	assert.Zero(t, s.stats.Calls)
}
