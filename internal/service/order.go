package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

// OrderService serves a user's order history.
type OrderService struct {
	orders repository.OrderRepository
	logger *slog.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(orders repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, logger: logger}
}

// ListOrders returns a page of the user's orders and the total count.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page pagination.Params) ([]domain.Order, int, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthenticated("sign in required")
	}
	orders, total, err := s.orders.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, 0, apperrors.RemoteCallFailed("Failed to load orders", err)
	}
	return orders, total, nil
}

// GetOrder returns one of the user's orders. Another user's order is
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID string, id int64) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("sign in required")
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.AsRemoteCallFailed("Failed to load order", err)
	}
	if o.UserID != userID {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "order requested by non-owner",
			slog.Int64("order_id", id),
		)
		return nil, apperrors.NotFound("order", fmt.Sprint(id))
	}
	return o, nil
}

// ReturnInput is the body of a return or refund request.
type ReturnInput struct {
	Reason string          `json:"reason" validate:"notblank,max=1000"`
	Amount decimal.Decimal `json:"amount"`
}

// ReturnService files return and refund requests.
type ReturnService struct {
	orders   *OrderService
	returns  repository.ReturnRepository
	notifier notice.Notifier
	logger   *slog.Logger
}

// NewReturnService creates a ReturnService.
func NewReturnService(orders *OrderService, returns repository.ReturnRepository, notifier notice.Notifier, logger *slog.Logger) *ReturnService {
	if notifier == nil {
		notifier = notice.ContextNotifier{}
	}
	return &ReturnService{orders: orders, returns: returns, notifier: notifier, logger: logger}
}

// checkEligible loads the caller's order and asks the database whether it
// may still be returned or refunded.
func (s *ReturnService) checkEligible(ctx context.Context, userID string, orderID int64, kind string) (*domain.Order, error) {
	o, err := s.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.returns.IsEligible(ctx, orderID)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "eligibility check failed",
			slog.Int64("order_id", orderID),
			slog.String("error", err.Error()),
		)
		s.notifier.Notify(ctx, notice.Error("Failed to check eligibility"))
		return nil, apperrors.RemoteCallFailed("Failed to check eligibility", err)
	}
	if !ok {
		msg := "Order is not eligible for " + kind
		s.notifier.Notify(ctx, notice.Error(msg))
		return nil, apperrors.ValidationFailed(msg)
	}
	return o, nil
}

// RequestReturn files a pending return for the user's order.
func (s *ReturnService) RequestReturn(ctx context.Context, userID string, orderID int64, in ReturnInput) (*domain.ReturnRequest, error) {
	if _, err := s.checkEligible(ctx, userID, orderID, "return"); err != nil {
		return nil, err
	}

	req := &domain.ReturnRequest{OrderID: orderID, UserID: userID, Reason: in.Reason}
	if err := s.returns.CreateReturn(ctx, req); err != nil {
		s.notifier.Notify(ctx, notice.Error("Failed to create return request"))
		return nil, apperrors.RemoteCallFailed("Failed to create return request", err)
	}

	s.notifier.Notify(ctx, notice.Success("Return request submitted"))
	return req, nil
}

// RequestRefund files a pending refund. The amount must be positive and at
// most the order total.
func (s *ReturnService) RequestRefund(ctx context.Context, userID string, orderID int64, in ReturnInput) (*domain.RefundRequest, error) {
	o, err := s.checkEligible(ctx, userID, orderID, "refund")
	if err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() || in.Amount.GreaterThan(o.Total) {
		msg := fmt.Sprintf("refund amount must be between 0 and %s", o.Total.StringFixed(2))
		s.notifier.Notify(ctx, notice.Error(msg))
		return nil, apperrors.ValidationFailed(msg)
	}

	req := &domain.RefundRequest{OrderID: orderID, UserID: userID, Reason: in.Reason, Amount: in.Amount}
	if err := s.returns.CreateRefund(ctx, req); err != nil {
		s.notifier.Notify(ctx, notice.Error("Failed to create refund request"))
		return nil, apperrors.RemoteCallFailed("Failed to create refund request", err)
	}

	s.notifier.Notify(ctx, notice.Success("Refund request submitted"))
	return req, nil
}
