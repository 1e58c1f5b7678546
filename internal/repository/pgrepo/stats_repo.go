package pgrepo

import (
	"context"
	"time"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) domain.StatsRepository {
	return &statsRepository{db: db}
}

// Orders that still count towards revenue.
const revenueStatuses = `status NOT IN ('cancelled', 'refunded')`

func (r *statsRepository) GetRevenueKPIs(ctx context.Context, start, end time.Time) (*domain.SalesKPIs, error) {
	var (
		revenue, shipping, tax pgtype.Numeric
		kpis                   domain.SalesKPIs
	)
	err := r.db.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE NOT (`+revenueStatuses+`)),
		       COALESCE(sum(total) FILTER (WHERE `+revenueStatuses+`), 0),
		       COALESCE(sum(shipping_cost) FILTER (WHERE `+revenueStatuses+`), 0),
		       COALESCE(sum(tax_amount) FILTER (WHERE `+revenueStatuses+`), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2`, start, end).
		Scan(&kpis.OrderCount, &kpis.CancelledCount, &revenue, &shipping, &tax)
	if err != nil {
		return nil, err
	}
	kpis.Revenue = numericToDecimal(revenue)
	kpis.ShippingCollected = numericToDecimal(shipping)
	kpis.TaxCollected = numericToDecimal(tax)
	return &kpis, nil
}

func (r *statsRepository) GetDailySales(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, count(*), COALESCE(sum(total), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND `+revenueStatuses+`
		GROUP BY day
		ORDER BY day`, start, end)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DailySales, error) {
		var (
			day     pgtype.Timestamptz
			revenue pgtype.Numeric
			d       domain.DailySales
		)
		if err := row.Scan(&day, &d.OrderCount, &revenue); err != nil {
			return domain.DailySales{}, err
		}
		d.Day = pgtimeToTime(day)
		d.Revenue = numericToDecimal(revenue)
		return d, nil
	})
}

func (r *statsRepository) GetTopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]domain.TopProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id, min(oi.name), sum(oi.quantity), COALESCE(sum(oi.line_total), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2 AND o.`+revenueStatuses+`
		GROUP BY oi.product_id
		ORDER BY sum(oi.quantity) DESC, oi.product_id
		LIMIT $3`, start, end, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TopProduct, error) {
		var (
			id      pgtype.UUID
			revenue pgtype.Numeric
			p       domain.TopProduct
		)
		if err := row.Scan(&id, &p.Name, &p.UnitsSold, &revenue); err != nil {
			return domain.TopProduct{}, err
		}
		p.ProductID = uuidToString(id)
		p.Revenue = numericToDecimal(revenue)
		return p, nil
	})
}
