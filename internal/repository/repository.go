package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ItemRepository persists one kind of per-user item list (cart or
// wishlist). Rows are keyed by (user, product).
type ItemRepository interface {
	// ListByUser returns every item the user holds, ordered by product id.
	ListByUser(ctx context.Context, userID string) ([]domain.LineItem, error)

	// Insert adds a row. Inserting a product that is already present is an error.
	Insert(ctx context.Context, userID string, item domain.LineItem) error

	// UpdateQuantity overwrites the quantity of an existing row.
	UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error

	// Delete removes one row. Deleting an absent row is not an error.
	Delete(ctx context.Context, userID string, productID int64) error

	// DeleteAllByUser removes every row the user holds.
	DeleteAllByUser(ctx context.Context, userID string) error
}

// ProductRepository reads the catalog.
type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// Search matches query case-insensitively against name and description,
	// ordered by name.
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

// ReviewRepository stores product reviews.
type ReviewRepository interface {
	// ListByProduct returns reviews newest first.
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	// Upsert creates or replaces the user's review of a product and
	// refreshes the product's average rating.
	Upsert(ctx context.Context, review *domain.Review) error
}

// OrderRepository stores placed orders.
type OrderRepository interface {
	// Create inserts the order and its items atomically, filling ID and CreatedAt.
	Create(ctx context.Context, order *domain.Order) error
	// ListByUser returns a page of the user's orders, newest first, and the total count.
	ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Order, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

// ReturnRepository stores return and refund requests.
type ReturnRepository interface {
	IsEligible(ctx context.Context, orderID int64) (bool, error)
	CreateReturn(ctx context.Context, req *domain.ReturnRequest) error
	CreateRefund(ctx context.Context, req *domain.RefundRequest) error
}
