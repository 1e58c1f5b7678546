package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"atelier-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

// --- Mappers ---

const categoryColumns = `id, name, localized_names, slug, image_url, display_order, is_active, created_at, updated_at`

func scanCategory(row scanner) (*domain.Category, error) {
	var (
		id                   pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
		c                    domain.Category
	)
	err := row.Scan(&id, &c.Name, &c.LocalizedNames, &c.Slug, &c.ImageURL, &c.DisplayOrder, &c.IsActive,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = uuidToString(id)
	c.CreatedAt = pgtimeToTime(createdAt)
	c.UpdatedAt = pgtimeToTime(updatedAt)
	return &c, nil
}

const productColumns = `p.id, p.category_id, p.name, p.localized_names, p.slug, p.description,
	p.localized_descriptions, p.price, p.image_url, p.images, p.stock, p.is_featured, p.is_active,
	p.created_at, p.updated_at`

func scanProduct(row scanner) (*domain.Product, error) {
	var (
		id, categoryID       pgtype.UUID
		price                pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
		p                    domain.Product
	)
	err := row.Scan(&id, &categoryID, &p.Name, &p.LocalizedNames, &p.Slug, &p.Description,
		&p.LocalizedDescriptions, &price, &p.ImageURL, &p.Images, &p.Stock, &p.IsFeatured, &p.IsActive,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = uuidToString(id)
	p.CategoryID = uuidToStringPtr(categoryID)
	p.Price = numericToDecimal(price)
	p.CreatedAt = pgtimeToTime(createdAt)
	p.UpdatedAt = pgtimeToTime(updatedAt)
	p.Variants = []domain.Variant{}
	return &p, nil
}

const variantColumns = `id, product_id, name, sku, price, stock, image_url, is_active`

func scanVariant(row scanner) (*domain.Variant, error) {
	var (
		id, productID pgtype.UUID
		price         pgtype.Numeric
		v             domain.Variant
	)
	if err := row.Scan(&id, &productID, &v.Name, &v.SKU, &price, &v.Stock, &v.ImageURL, &v.IsActive); err != nil {
		return nil, err
	}
	v.ID = uuidToString(id)
	v.ProductID = uuidToString(productID)
	v.Price = numericToDecimalPtr(price)
	return &v, nil
}

// --- Categories ---

func (r *productRepository) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE ($1::boolean IS FALSE OR is_active)
		ORDER BY display_order, name`, activeOnly)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		c, err := scanCategory(row)
		if err != nil {
			return domain.Category{}, err
		}
		return *c, nil
	})
}

func (r *productRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	row := conn(ctx, r.db).QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, stringToUUID(id))
	c, err := scanCategory(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *productRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO categories (name, localized_names, slug, image_url, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		category.Name, localized(category.LocalizedNames), category.Slug, category.ImageURL,
		category.DisplayOrder, category.IsActive)
	created, err := scanCategory(row)
	if err != nil {
		return mapErr(err)
	}
	*category = *created
	return nil
}

func (r *productRepository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	row := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE categories SET
			name = $2, localized_names = $3, slug = $4, image_url = $5, display_order = $6,
			is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		stringToUUID(category.ID), category.Name, localized(category.LocalizedNames), category.Slug,
		category.ImageURL, category.DisplayOrder, category.IsActive)
	updated, err := scanCategory(row)
	if err != nil {
		return mapErr(err)
	}
	*category = *updated
	return nil
}

func (r *productRepository) DeleteCategory(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx, `DELETE FROM categories WHERE id = $1`, stringToUUID(id)))
}

// --- Products ---

func (r *productRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	var (
		where []string
		args  []any
	)
	from := ` FROM products p`
	if filter.CategorySlug != "" {
		from += ` JOIN categories c ON c.id = p.category_id`
		args = append(args, filter.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if filter.IsFeatured != nil {
		args = append(args, *filter.IsFeatured)
		where = append(where, fmt.Sprintf("p.is_featured = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "p.is_active")
	}
	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}

	db := conn(ctx, r.db)
	var total int64
	if err := db.QueryRow(ctx, `SELECT count(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	rows, err := db.Query(ctx, `SELECT `+productColumns+from+
		fmt.Sprintf(" ORDER BY p.is_featured DESC, p.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		p, err := scanProduct(row)
		if err != nil {
			return domain.Product{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachVariants(ctx, db, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) attachVariants(ctx context.Context, db DBTX, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := db.Query(ctx, `SELECT `+variantColumns+` FROM product_variants
		WHERE product_id = ANY($1) ORDER BY name`, stringsToUUIDs(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return err
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, *v)
		}
	}
	return rows.Err()
}

func (r *productRepository) getOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	db := conn(ctx, r.db)
	p, err := scanProduct(db.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE `+where, arg))
	if err != nil {
		return nil, mapErr(err)
	}
	products := []domain.Product{*p}
	if err := r.attachVariants(ctx, db, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, `p.id = $1`, stringToUUID(id))
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, `p.slug = $1`, slug)
}

func (r *productRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	return inTx(ctx, r.db, func(db DBTX) error {
		row := db.QueryRow(ctx, `
			INSERT INTO products AS p (category_id, name, localized_names, slug, description,
				localized_descriptions, price, image_url, images, stock, is_featured, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING `+productColumns,
			stringPtrToUUID(product.CategoryID), product.Name, localized(product.LocalizedNames), product.Slug,
			product.Description, localized(product.LocalizedDescriptions), decimalToNumeric(product.Price),
			product.ImageURL, images(product.Images), product.Stock, product.IsFeatured, product.IsActive)
		created, err := scanProduct(row)
		if err != nil {
			return mapErr(err)
		}
		variants, err := replaceVariants(ctx, db, created.ID, product.Variants)
		if err != nil {
			return err
		}
		created.Variants = variants
		*product = *created
		return nil
	})
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return inTx(ctx, r.db, func(db DBTX) error {
		row := db.QueryRow(ctx, `
			UPDATE products AS p SET
				category_id = $2, name = $3, localized_names = $4, slug = $5, description = $6,
				localized_descriptions = $7, price = $8, image_url = $9, images = $10, stock = $11,
				is_featured = $12, is_active = $13, updated_at = now()
			WHERE p.id = $1
			RETURNING `+productColumns,
			stringToUUID(product.ID), stringPtrToUUID(product.CategoryID), product.Name,
			localized(product.LocalizedNames), product.Slug, product.Description,
			localized(product.LocalizedDescriptions), decimalToNumeric(product.Price), product.ImageURL,
			images(product.Images), product.Stock, product.IsFeatured, product.IsActive)
		updated, err := scanProduct(row)
		if err != nil {
			return mapErr(err)
		}
		variants, err := replaceVariants(ctx, db, updated.ID, product.Variants)
		if err != nil {
			return err
		}
		updated.Variants = variants
		*product = *updated
		return nil
	})
}

// replaceVariants makes the stored variant set equal to variants, keeping the
// ids of entries that already carry one.
func replaceVariants(ctx context.Context, db DBTX, productID string, variants []domain.Variant) ([]domain.Variant, error) {
	pid := stringToUUID(productID)
	keep := make([]pgtype.UUID, 0, len(variants))
	for _, v := range variants {
		if u := stringToUUID(v.ID); u.Valid {
			keep = append(keep, u)
		}
	}
	if _, err := db.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1 AND NOT (id = ANY($2))`, pid, keep); err != nil {
		return nil, err
	}

	saved := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		row := db.QueryRow(ctx, `
			INSERT INTO product_variants (id, product_id, name, sku, price, stock, image_url, is_active)
			VALUES (COALESCE($1, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, sku = EXCLUDED.sku, price = EXCLUDED.price, stock = EXCLUDED.stock,
				image_url = EXCLUDED.image_url, is_active = EXCLUDED.is_active
			WHERE product_variants.product_id = EXCLUDED.product_id
			RETURNING `+variantColumns,
			stringToUUID(v.ID), pid, v.Name, v.SKU, decimalPtrToNumeric(v.Price), v.Stock, v.ImageURL, v.IsActive)
		sv, err := scanVariant(row)
		if err != nil {
			// Conflict on a variant id owned by another product.
			return nil, mapErr(err)
		}
		saved = append(saved, *sv)
	}
	return saved, nil
}

func (r *productRepository) UpdateProductStatus(ctx context.Context, id string, isActive bool) error {
	return expectRows(conn(ctx, r.db).Exec(ctx,
		`UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1`, stringToUUID(id), isActive))
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx, `DELETE FROM products WHERE id = $1`, stringToUUID(id)))
}

func images(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
