package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

const orderColumns = `
	id, order_number, user_id, customer_name, user_email,
	subtotal, coupon_code, applied_discount, total_amount,
	shipping_address, shipping_city, shipping_state, shipping_country, shipping_postal_code,
	payment_method, status, created_at`

// OrderRepository implements repository.OrderRepository.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates an OrderRepository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (
				order_number, user_id, customer_name, user_email,
				subtotal, coupon_code, applied_discount, total_amount,
				shipping_address, shipping_city, shipping_state, shipping_country, shipping_postal_code,
				payment_method, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id, created_at`,
			o.OrderNumber, o.UserID, o.CustomerName, o.Email,
			o.Subtotal, o.CouponCode, o.DiscountPercentage, o.Total,
			o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State,
			o.ShippingAddress.Country, o.ShippingAddress.PostalCode,
			o.PaymentMethod, o.Status,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			if pgErrorCode(err) == uniqueViolation {
				return apperrors.Conflict("order number " + o.OrderNumber + " already exists")
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range o.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
				VALUES ($1, $2, $3, $4, $5)`,
				o.ID, it.ProductID, it.Name, it.UnitPrice, it.Quantity,
			)
			if err != nil {
				return fmt.Errorf("insert order item %d: %w", it.ProductID, err)
			}
		}
		return nil
	})
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	a := &o.ShippingAddress
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerName, &o.Email,
		&o.Subtotal, &o.CouponCode, &o.DiscountPercentage, &o.Total,
		&a.Street, &a.City, &a.State, &a.Country, &a.PostalCode,
		&o.PaymentMethod, &o.Status, &o.CreatedAt,
	)
	return o, err
}

// ListByUser returns a page of the user's orders, newest first. Line items
// are not loaded; use GetByID for the full snapshot.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		o.Items = []domain.LineItem{}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, total, nil
}

// GetByID returns an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", fmt.Sprint(id))
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	o.Items = []domain.LineItem{}
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}
	return &o, nil
}
