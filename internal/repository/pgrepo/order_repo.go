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

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

// --- Mappers ---

const orderColumns = `id, status, customer_name, customer_email, customer_phone, shipping_address,
	country_code, shipping_method, subtotal, shipping_cost, tax_rate, tax_amount, total, currency,
	notes, created_at, updated_at`

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		id                          pgtype.UUID
		method                      string
		subtotal, shipping, taxRate pgtype.Numeric
		taxAmount, total            pgtype.Numeric
		createdAt, updatedAt        pgtype.Timestamptz
		o                           domain.Order
	)
	err := row.Scan(&id, &o.Status, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.ShippingAddress, &o.CountryCode, &method, &subtotal, &shipping, &taxRate, &taxAmount,
		&total, &o.Currency, &o.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.ID = uuidToString(id)
	o.ShippingMethod = domain.ShippingMethod(method)
	o.Subtotal = numericToDecimal(subtotal)
	o.ShippingCost = numericToDecimal(shipping)
	o.TaxRate = numericToDecimal(taxRate)
	o.TaxAmount = numericToDecimal(taxAmount)
	o.Total = numericToDecimal(total)
	o.CreatedAt = pgtimeToTime(createdAt)
	o.UpdatedAt = pgtimeToTime(updatedAt)
	o.Items = []domain.OrderItem{}
	return &o, nil
}

func scanOrderItem(row scanner) (*domain.OrderItem, error) {
	var (
		id, orderID, productID, variantID pgtype.UUID
		unitPrice, lineTotal              pgtype.Numeric
		item                              domain.OrderItem
	)
	err := row.Scan(&id, &orderID, &productID, &variantID, &item.Name, &unitPrice, &item.Quantity, &lineTotal)
	if err != nil {
		return nil, err
	}
	item.ID = uuidToString(id)
	item.OrderID = uuidToString(orderID)
	item.ProductID = uuidToString(productID)
	item.VariantID = uuidToStringPtr(variantID)
	item.UnitPrice = numericToDecimal(unitPrice)
	item.LineTotal = numericToDecimal(lineTotal)
	return &item, nil
}

// --- Order Methods ---

// CreateOrder inserts the order and its items. Run it inside
// TransactionManager.Do so a failed item rolls the order back.
func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	db := conn(ctx, r.db)
	row := db.QueryRow(ctx, `
		INSERT INTO orders (status, customer_name, customer_email, customer_phone, shipping_address,
			country_code, shipping_method, subtotal, shipping_cost, tax_rate, tax_amount, total,
			currency, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+orderColumns,
		order.Status, order.Customer.Name, order.Customer.Email, order.Customer.Phone, order.ShippingAddress,
		order.CountryCode, string(order.ShippingMethod), decimalToNumeric(order.Subtotal),
		decimalToNumeric(order.ShippingCost), decimalToNumeric(order.TaxRate), decimalToNumeric(order.TaxAmount),
		decimalToNumeric(order.Total), order.Currency, order.Notes)
	created, err := scanOrder(row)
	if err != nil {
		return mapErr(err)
	}

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, variant_id, name, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, order_id, product_id, variant_id, name, unit_price, quantity, line_total`,
			stringToUUID(created.ID), stringToUUID(item.ProductID), stringPtrToUUID(item.VariantID), item.Name,
			decimalToNumeric(item.UnitPrice), item.Quantity, decimalToNumeric(item.LineTotal))
	}
	results := db.SendBatch(ctx, batch)
	for range order.Items {
		item, err := scanOrderItem(results.QueryRow())
		if err != nil {
			results.Close()
			return fmt.Errorf("insert order item: %w", err)
		}
		created.Items = append(created.Items, *item)
	}
	if err := results.Close(); err != nil {
		return err
	}

	*order = *created
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	db := conn(ctx, r.db)
	order, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, stringToUUID(id)))
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := db.Query(ctx, `
		SELECT id, order_id, product_id, variant_id, name, unit_price, quantity, line_total
		FROM order_items WHERE order_id = $1 ORDER BY name`, stringToUUID(order.ID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}
	return order, rows.Err()
}

// --- Admin Methods ---

// GetAll lists orders without their items.
func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(customer_name ILIKE $%d OR customer_email ILIKE $%d OR id::text ILIKE $%d)", n, n, n))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	db := conn(ctx, r.db)
	var count int64
	if err := db.QueryRow(ctx, `SELECT count(*) FROM orders`+clause, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := db.Query(ctx, `SELECT `+orderColumns+` FROM orders`+clause+
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		o, err := scanOrder(row)
		if err != nil {
			return domain.Order{}, err
		}
		return *o, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return expectRows(conn(ctx, r.db).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, stringToUUID(id), status))
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO order_history (order_id, previous_status, new_status, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		stringToUUID(history.OrderID), history.PreviousStatus, history.NewStatus, history.Reason,
		history.CreatedBy).Scan(&id, &createdAt)
	if err != nil {
		return mapErr(err)
	}
	history.ID = uuidToString(id)
	history.CreatedAt = pgtimeToTime(createdAt)
	return nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, order_id, previous_status, new_status, reason, created_by, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at`, stringToUUID(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []domain.OrderHistory{}
	for rows.Next() {
		var (
			id, oid   pgtype.UUID
			createdAt pgtype.Timestamptz
			h         domain.OrderHistory
		)
		if err := rows.Scan(&id, &oid, &h.PreviousStatus, &h.NewStatus, &h.Reason, &h.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		h.ID = uuidToString(id)
		h.OrderID = uuidToString(oid)
		h.CreatedAt = pgtimeToTime(createdAt)
		history = append(history, h)
	}
	return history, rows.Err()
}
