package pgrepo

import (
	"context"
	"errors"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// cartStorage persists serialized carts in the cart_sessions table.
type cartStorage struct {
	db *pgxpool.Pool
}

func NewCartStorage(db *pgxpool.Pool) domain.CartStorage {
	return &cartStorage{db: db}
}

func (s *cartStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := conn(ctx, s.db).QueryRow(ctx, `SELECT payload FROM cart_sessions WHERE id = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *cartStorage) Set(ctx context.Context, key string, data []byte) error {
	_, err := conn(ctx, s.db).Exec(ctx, `
		INSERT INTO cart_sessions (id, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, key, string(data))
	return err
}

func (s *cartStorage) Delete(ctx context.Context, key string) error {
	_, err := conn(ctx, s.db).Exec(ctx, `DELETE FROM cart_sessions WHERE id = $1`, key)
	return err
}
