package pgrepo

import (
	"context"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type mediaRepository struct {
	db *pgxpool.Pool
}

func NewMediaRepository(db *pgxpool.Pool) domain.MediaRepository {
	return &mediaRepository{db: db}
}

const mediaColumns = `id, kind, title, localized_text, media_url, link_url, display_order, is_active,
	start_at, end_at, created_at, updated_at`

func scanMedia(row scanner) (*domain.MediaBlock, error) {
	var (
		id                   pgtype.UUID
		startAt, endAt       pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
		m                    domain.MediaBlock
	)
	err := row.Scan(&id, &m.Kind, &m.Title, &m.LocalizedText, &m.MediaURL, &m.LinkURL, &m.DisplayOrder,
		&m.IsActive, &startAt, &endAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.ID = uuidToString(id)
	m.StartAt = pgtimeToTimePtr(startAt)
	m.EndAt = pgtimeToTimePtr(endAt)
	m.CreatedAt = pgtimeToTime(createdAt)
	m.UpdatedAt = pgtimeToTime(updatedAt)
	return &m, nil
}

// ListByKind returns every block of kind; schedule filtering happens in the usecase.
func (r *mediaRepository) ListByKind(ctx context.Context, kind string) ([]domain.MediaBlock, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT `+mediaColumns+` FROM media_blocks
		WHERE ($1 = '' OR kind = $1)
		ORDER BY kind, display_order, created_at`, kind)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MediaBlock, error) {
		m, err := scanMedia(row)
		if err != nil {
			return domain.MediaBlock{}, err
		}
		return *m, nil
	})
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*domain.MediaBlock, error) {
	m, err := scanMedia(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media_blocks WHERE id = $1`, stringToUUID(id)))
	if err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (r *mediaRepository) Create(ctx context.Context, block *domain.MediaBlock) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO media_blocks (kind, title, localized_text, media_url, link_url, display_order,
			is_active, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+mediaColumns,
		block.Kind, block.Title, localized(block.LocalizedText), block.MediaURL, block.LinkURL,
		block.DisplayOrder, block.IsActive, timePtrToPgtime(block.StartAt), timePtrToPgtime(block.EndAt))
	created, err := scanMedia(row)
	if err != nil {
		return mapErr(err)
	}
	*block = *created
	return nil
}

func (r *mediaRepository) Update(ctx context.Context, block *domain.MediaBlock) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE media_blocks SET
			kind = $2, title = $3, localized_text = $4, media_url = $5, link_url = $6,
			display_order = $7, is_active = $8, start_at = $9, end_at = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+mediaColumns,
		stringToUUID(block.ID), block.Kind, block.Title, localized(block.LocalizedText), block.MediaURL,
		block.LinkURL, block.DisplayOrder, block.IsActive, timePtrToPgtime(block.StartAt),
		timePtrToPgtime(block.EndAt))
	updated, err := scanMedia(row)
	if err != nil {
		return mapErr(err)
	}
	*block = *updated
	return nil
}

func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx, `DELETE FROM media_blocks WHERE id = $1`, stringToUUID(id)))
}
