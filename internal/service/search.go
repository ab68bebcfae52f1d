package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/search"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// SearchLimit caps the number of search results.
const SearchLimit = 50

// SearchService runs product searches.
type SearchService struct {
	engine search.Engine
	logger *slog.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(engine search.Engine, logger *slog.Logger) *SearchService {
	return &SearchService{engine: engine, logger: logger}
}

// Search matches query against product names and descriptions. A blank
// query returns no products without touching the engine.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}

	products, err := s.engine.Search(ctx, query, SearchLimit)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.RemoteCallFailed("Failed to perform search", err)
	}
	return products, nil
}
