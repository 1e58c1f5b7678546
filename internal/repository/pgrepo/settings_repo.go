package pgrepo

import (
	"context"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) domain.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetValues(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT key, value FROM site_settings WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, rows.Err()
}

// UpsertValues writes every key in one batch.
func (r *settingsRepository) UpsertValues(ctx context.Context, values map[string]string) error {
	batch := &pgx.Batch{}
	for k, v := range values {
		batch.Queue(`
			INSERT INTO site_settings (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, k, v)
	}
	return conn(ctx, r.db).SendBatch(ctx, batch).Close()
}
