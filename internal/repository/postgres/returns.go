package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

// ReturnRepository implements repository.ReturnRepository.
type ReturnRepository struct {
	db database.DBTX
}

// NewReturnRepository creates a ReturnRepository.
func NewReturnRepository(db database.DBTX) *ReturnRepository {
	return &ReturnRepository{db: db}
}

// IsEligible calls is_order_eligible_for_return_or_refund.
func (r *ReturnRepository) IsEligible(ctx context.Context, orderID int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT is_order_eligible_for_return_or_refund($1)`, orderID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check return eligibility: %w", err)
	}
	return ok, nil
}

// CreateReturn inserts a return request, filling ID, Status and CreatedAt.
func (r *ReturnRepository) CreateReturn(ctx context.Context, req *domain.ReturnRequest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO return_requests (order_id, user_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at`,
		req.OrderID, req.UserID, req.Reason,
	).Scan(&req.ID, &req.Status, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert return request: %w", err)
	}
	return nil
}

// CreateRefund inserts a refund request, filling ID, Status and CreatedAt.
func (r *ReturnRepository) CreateRefund(ctx context.Context, req *domain.RefundRequest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO refund_requests (order_id, user_id, reason, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at`,
		req.OrderID, req.UserID, req.Reason, req.Amount,
	).Scan(&req.ID, &req.Status, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refund request: %w", err)
	}
	return nil
}
