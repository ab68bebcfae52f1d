package service

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// ReviewInput is the body of a product review.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// CatalogService reads products and accepts reviews.
type CatalogService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	notifier notice.Notifier
	logger   *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	notifier notice.Notifier,
	logger *slog.Logger,
) *CatalogService {
	if notifier == nil {
		notifier = notice.ContextNotifier{}
	}
	return &CatalogService{products: products, reviews: reviews, notifier: notifier, logger: logger}
}

// ListProducts returns the products inside the filter's bounds.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperrors.ValidationFailed("min_price must not exceed max_price")
	}
	if filter.MinRating != nil && filter.MaxRating != nil && *filter.MinRating > *filter.MaxRating {
		return nil, apperrors.ValidationFailed("min_rating must not exceed max_rating")
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		s.notifier.Notify(ctx, notice.Error("Failed to fetch products"))
		return nil, apperrors.RemoteCallFailed("Failed to fetch products", err)
	}
	return products, nil
}

// GetProduct loads a product and its reviews concurrently.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	var (
		product *domain.Product
		reviews []domain.Review
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.products.GetByID(gctx, id)
		if err != nil {
			s.notifier.Notify(ctx, notice.Error("Failed to fetch product"))
			return apperrors.AsRemoteCallFailed("Failed to fetch product", err)
		}
		product = p
		return nil
	})
	g.Go(func() error {
		rv, err := s.reviews.ListByProduct(gctx, id)
		if err != nil {
			if gctx.Err() != nil {
				return err
			}
			s.notifier.Notify(ctx, notice.Error("Failed to fetch reviews"))
			return apperrors.RemoteCallFailed("Failed to fetch reviews", err)
		}
		reviews = rv
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &domain.ProductDetail{Product: *product, Reviews: reviews}, nil
}

// SubmitReview creates or replaces the user's review of a product.
func (s *CatalogService) SubmitReview(ctx context.Context, userID string, productID int64, in ReviewInput) (*domain.Review, error) {
	if userID == "" {
		s.notifier.Notify(ctx, notice.Error("Please sign in to submit a review"))
		return nil, apperrors.Unauthenticated("Please sign in to submit a review")
	}
	if in.Rating < 1 || in.Rating > 5 {
		s.notifier.Notify(ctx, notice.Error("Rating must be between 1 and 5"))
		return nil, apperrors.ValidationFailed("Rating must be between 1 and 5")
	}

	review := &domain.Review{ProductID: productID, UserID: userID, Rating: in.Rating, Comment: strings.TrimSpace(in.Comment)}
	if err := s.reviews.Upsert(ctx, review); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "review upsert failed",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
		s.notifier.Notify(ctx, notice.Error("Failed to submit review"))
		return nil, apperrors.AsRemoteCallFailed("Failed to submit review", err)
	}

	s.notifier.Notify(ctx, notice.Success("Review submitted successfully"))
	return review, nil
}
