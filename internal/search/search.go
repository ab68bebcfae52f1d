// Package search finds products by a case-insensitive substring of their
// name or description.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// Engine runs product searches. Results are ordered by name ascending and
// capped at limit.
type Engine interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

// Indexer is implemented by engines that keep their own copy of the catalog.
type Indexer interface {
	BulkIndex(ctx context.Context, products []domain.Product) error
}

// PostgresEngine searches the products table directly.
type PostgresEngine struct {
	products repository.ProductRepository
}

// NewPostgresEngine creates a PostgresEngine.
func NewPostgresEngine(products repository.ProductRepository) *PostgresEngine {
	return &PostgresEngine{products: products}
}

// Search implements Engine.
func (e *PostgresEngine) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return e.products.Search(ctx, query, limit)
}

// Reindex copies the whole catalog into idx.
func Reindex(ctx context.Context, products repository.ProductRepository, idx Indexer, logger *slog.Logger) error {
	all, err := products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return fmt.Errorf("reindex: list products: %w", err)
	}
	if err := idx.BulkIndex(ctx, all); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	logger.Info("search index rebuilt", slog.Int("products", len(all)))
	return nil
}
