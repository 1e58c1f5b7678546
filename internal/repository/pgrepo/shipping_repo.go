package pgrepo

import (
	"context"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type shippingRateRepository struct {
	db *pgxpool.Pool
}

func NewShippingRateRepository(db *pgxpool.Pool) domain.ShippingRateRepository {
	return &shippingRateRepository{db: db}
}

const shippingRateColumns = `id, country_code, method, base_rate, free_shipping_threshold,
	estimated_days_min, estimated_days_max, is_active, display_order, created_at, updated_at`

func scanShippingRate(row scanner) (*domain.ShippingRate, error) {
	var (
		id                  pgtype.UUID
		method              string
		baseRate, threshold pgtype.Numeric
		createdAt, updated  pgtype.Timestamptz
		rate                domain.ShippingRate
	)
	err := row.Scan(&id, &rate.CountryCode, &method, &baseRate, &threshold,
		&rate.EstimatedDaysMin, &rate.EstimatedDaysMax, &rate.IsActive, &rate.DisplayOrder,
		&createdAt, &updated)
	if err != nil {
		return nil, err
	}
	rate.ID = uuidToString(id)
	rate.Method = domain.ShippingMethod(method)
	rate.BaseRate = numericToDecimal(baseRate)
	rate.FreeShippingThreshold = numericToThreshold(threshold)
	rate.CreatedAt = pgtimeToTime(createdAt)
	rate.UpdatedAt = pgtimeToTime(updated)
	return &rate, nil
}

func (r *shippingRateRepository) list(ctx context.Context, query string, args ...any) ([]domain.ShippingRate, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []domain.ShippingRate
	for rows.Next() {
		rate, err := scanShippingRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rate)
	}
	return rates, rows.Err()
}

func (r *shippingRateRepository) GetActiveRate(ctx context.Context, countryCode string, method domain.ShippingMethod) (*domain.ShippingRate, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+shippingRateColumns+`
		FROM shipping_rates
		WHERE country_code = $1 AND method = $2 AND is_active
		LIMIT 1`, countryCode, string(method))
	rate, err := scanShippingRate(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return rate, nil
}

func (r *shippingRateRepository) ListActiveByCountry(ctx context.Context, countryCode string) ([]domain.ShippingRate, error) {
	return r.list(ctx, `
		SELECT `+shippingRateColumns+`
		FROM shipping_rates
		WHERE country_code = $1 AND is_active
		ORDER BY display_order, base_rate`, countryCode)
}

func (r *shippingRateRepository) ListAll(ctx context.Context) ([]domain.ShippingRate, error) {
	return r.list(ctx, `
		SELECT `+shippingRateColumns+`
		FROM shipping_rates
		ORDER BY country_code, display_order, method`)
}

func (r *shippingRateRepository) GetByID(ctx context.Context, id string) (*domain.ShippingRate, error) {
	row := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+shippingRateColumns+` FROM shipping_rates WHERE id = $1`, stringToUUID(id))
	rate, err := scanShippingRate(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return rate, nil
}

func (r *shippingRateRepository) Create(ctx context.Context, rate *domain.ShippingRate) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO shipping_rates (country_code, method, base_rate, free_shipping_threshold,
			estimated_days_min, estimated_days_max, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+shippingRateColumns,
		rate.CountryCode, string(rate.Method), decimalToNumeric(rate.BaseRate),
		thresholdToNumeric(rate.FreeShippingThreshold), rate.EstimatedDaysMin, rate.EstimatedDaysMax,
		rate.IsActive, rate.DisplayOrder)
	created, err := scanShippingRate(row)
	if err != nil {
		return mapErr(err)
	}
	*rate = *created
	return nil
}

func (r *shippingRateRepository) Update(ctx context.Context, rate *domain.ShippingRate) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE shipping_rates SET
			country_code = $2, method = $3, base_rate = $4, free_shipping_threshold = $5,
			estimated_days_min = $6, estimated_days_max = $7, is_active = $8, display_order = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING `+shippingRateColumns,
		stringToUUID(rate.ID), rate.CountryCode, string(rate.Method), decimalToNumeric(rate.BaseRate),
		thresholdToNumeric(rate.FreeShippingThreshold), rate.EstimatedDaysMin, rate.EstimatedDaysMax,
		rate.IsActive, rate.DisplayOrder)
	updated, err := scanShippingRate(row)
	if err != nil {
		return mapErr(err)
	}
	*rate = *updated
	return nil
}

func (r *shippingRateRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx, `DELETE FROM shipping_rates WHERE id = $1`, stringToUUID(id)))
}

// --- Country tax rates ---

type taxRateRepository struct {
	db *pgxpool.Pool
}

func NewTaxRateRepository(db *pgxpool.Pool) domain.TaxRateRepository {
	return &taxRateRepository{db: db}
}

func scanTaxRate(row scanner) (*domain.CountryTaxRate, error) {
	var (
		t       domain.CountryTaxRate
		rate    pgtype.Numeric
		updated pgtype.Timestamptz
	)
	if err := row.Scan(&t.CountryCode, &rate, &updated); err != nil {
		return nil, err
	}
	t.Rate = numericToDecimal(rate)
	t.UpdatedAt = pgtimeToTime(updated)
	return &t, nil
}

func (r *taxRateRepository) GetByCountry(ctx context.Context, countryCode string) (*domain.CountryTaxRate, error) {
	row := conn(ctx, r.db).QueryRow(ctx,
		`SELECT country_code, rate, updated_at FROM country_tax_rates WHERE country_code = $1`, countryCode)
	t, err := scanTaxRate(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *taxRateRepository) ListAll(ctx context.Context) ([]domain.CountryTaxRate, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT country_code, rate, updated_at FROM country_tax_rates ORDER BY country_code`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CountryTaxRate, error) {
		t, err := scanTaxRate(row)
		if err != nil {
			return domain.CountryTaxRate{}, err
		}
		return *t, nil
	})
}

func (r *taxRateRepository) Upsert(ctx context.Context, rate *domain.CountryTaxRate) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO country_tax_rates (country_code, rate, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (country_code) DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()
		RETURNING country_code, rate, updated_at`, rate.CountryCode, decimalToNumeric(rate.Rate))
	saved, err := scanTaxRate(row)
	if err != nil {
		return mapErr(err)
	}
	*rate = *saved
	return nil
}

func (r *taxRateRepository) Delete(ctx context.Context, countryCode string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx,
		`DELETE FROM country_tax_rates WHERE country_code = $1`, countryCode))
}
