package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ItemRepository implements repository.ItemRepository over one of the
// per-user item tables. Name and price are read from products, so the
// values passed to Insert are not stored.
type ItemRepository struct {
	db    database.DBTX
	table string
}

// NewCartRepository returns the repository for cart_items.
func NewCartRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db, table: "cart_items"}
}

// NewWishlistRepository returns the repository for wishlist_items.
func NewWishlistRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db, table: "wishlist_items"}
}

// ListByUser returns the user's rows joined with their products.
func (r *ItemRepository) ListByUser(ctx context.Context, userID string) ([]domain.LineItem, error) {
	query := `
		SELECT i.product_id, p.name, p.price, i.quantity
		FROM ` + r.table + ` i
		JOIN products p ON p.id = i.product_id
		WHERE i.user_id = $1
		ORDER BY i.product_id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", r.table, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", r.table, err)
	}
	return items, nil
}

// Insert adds a row with the item's quantity (at least 1).
func (r *ItemRepository) Insert(ctx context.Context, userID string, item domain.LineItem) error {
	qty := max(item.Quantity, 1)
	query := `INSERT INTO ` + r.table + ` (user_id, product_id, quantity) VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, userID, item.ProductID, qty); err != nil {
		switch pgErrorCode(err) {
		case uniqueViolation:
			return apperrors.Conflict(fmt.Sprintf("product %d is already in %s", item.ProductID, r.table))
		case foreignKeyViolation:
			return apperrors.NotFound("product", fmt.Sprint(item.ProductID))
		}
		return fmt.Errorf("insert into %s: %w", r.table, err)
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing row.
func (r *ItemRepository) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	query := `UPDATE ` + r.table + ` SET quantity = $3 WHERE user_id = $1 AND product_id = $2`

	tag, err := r.db.Exec(ctx, query, userID, productID, quantity)
	if err != nil {
		if pgErrorCode(err) == checkViolation {
			return apperrors.ValidationFailed(fmt.Sprintf("quantity %d is not allowed", quantity))
		}
		return fmt.Errorf("update %s quantity: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(r.table+" item", fmt.Sprint(productID))
	}
	return nil
}

// Delete removes one row; a missing row is not an error.
func (r *ItemRepository) Delete(ctx context.Context, userID string, productID int64) error {
	query := `DELETE FROM ` + r.table + ` WHERE user_id = $1 AND product_id = $2`
	if _, err := r.db.Exec(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("delete from %s: %w", r.table, err)
	}
	return nil
}

// DeleteAllByUser removes every row for the user.
func (r *ItemRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM ` + r.table + ` WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("clear %s: %w", r.table, err)
	}
	return nil
}
