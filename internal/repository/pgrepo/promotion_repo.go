package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type promotionRepository struct {
	db *pgxpool.Pool
}

func NewPromotionRepository(db *pgxpool.Pool) domain.PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionColumns = `id, product_id, discount_percent, starts_at, ends_at, active, created_at, updated_at`

func scanPromotion(row scanner) (*domain.Promotion, error) {
	var (
		id, productID        pgtype.UUID
		discount             pgtype.Numeric
		startsAt, endsAt     pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
		p                    domain.Promotion
	)
	if err := row.Scan(&id, &productID, &discount, &startsAt, &endsAt, &p.Active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.ID = uuidToString(id)
	p.ProductID = uuidToString(productID)
	p.DiscountPercent = numericToDecimal(discount)
	p.StartsAt = pgtimeToTimePtr(startsAt)
	p.EndsAt = pgtimeToTimePtr(endsAt)
	p.CreatedAt = pgtimeToTime(createdAt)
	p.UpdatedAt = pgtimeToTime(updatedAt)
	return &p, nil
}

func (r *promotionRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Promotion, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

func (r *promotionRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Promotion, error) {
	return r.query(ctx, `
		SELECT `+promotionColumns+` FROM promotions
		WHERE product_id = $1
		ORDER BY created_at`, stringToUUID(productID))
}

// ListByProducts loads the promotions of a whole catalog page in one query.
func (r *promotionRepository) ListByProducts(ctx context.Context, productIDs []string) (map[string][]domain.Promotion, error) {
	result := make(map[string][]domain.Promotion, len(productIDs))
	ids := stringsToUUIDs(productIDs)
	if len(ids) == 0 {
		return result, nil
	}
	promos, err := r.query(ctx, `
		SELECT `+promotionColumns+` FROM promotions
		WHERE product_id = ANY($1)
		ORDER BY created_at`, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range promos {
		result[p.ProductID] = append(result[p.ProductID], p)
	}
	return result, nil
}

func (r *promotionRepository) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.ProductID != "" {
		args = append(args, stringToUUID(filter.ProductID))
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "active")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT count(*) FROM promotions`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	promos, err := r.query(ctx, `SELECT `+promotionColumns+` FROM promotions`+clause+
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

func (r *promotionRepository) GetByID(ctx context.Context, id string) (*domain.Promotion, error) {
	row := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, stringToUUID(id))
	p, err := scanPromotion(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *promotionRepository) Create(ctx context.Context, promo *domain.Promotion) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO promotions (product_id, discount_percent, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+promotionColumns,
		stringToUUID(promo.ProductID), decimalToNumeric(promo.DiscountPercent),
		timePtrToPgtime(promo.StartsAt), timePtrToPgtime(promo.EndsAt), promo.Active)
	created, err := scanPromotion(row)
	if err != nil {
		return mapErr(err)
	}
	*promo = *created
	return nil
}

func (r *promotionRepository) Update(ctx context.Context, promo *domain.Promotion) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE promotions SET
			product_id = $2, discount_percent = $3, starts_at = $4, ends_at = $5, active = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING `+promotionColumns,
		stringToUUID(promo.ID), stringToUUID(promo.ProductID), decimalToNumeric(promo.DiscountPercent),
		timePtrToPgtime(promo.StartsAt), timePtrToPgtime(promo.EndsAt), promo.Active)
	updated, err := scanPromotion(row)
	if err != nil {
		return mapErr(err)
	}
	*promo = *updated
	return nil
}

func (r *promotionRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx, `DELETE FROM promotions WHERE id = $1`, stringToUUID(id)))
}
