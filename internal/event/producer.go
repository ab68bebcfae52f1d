package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/store"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated     = pkgkafka.Topic("storefront", "cart", "updated")
	TopicWishlistUpdated = pkgkafka.Topic("storefront", "wishlist", "updated")
	TopicOrderPlaced     = pkgkafka.Topic("storefront", "order", "placed")
)

// Event types and aggregate types.
const (
	TypeCartUpdated     = "cart.updated"
	TypeWishlistUpdated = "wishlist.updated"
	TypeOrderPlaced     = "order.placed"

	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// Source identifies events published by this service.
const Source = "storefront"

// ListChangedData is the payload of cart.updated and wishlist.updated.
type ListChangedData struct {
	UserID    string            `json:"user_id"`
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

// OrderPlacedData is the payload of order.placed.
type OrderPlacedData struct {
	OrderID            int64           `json:"order_id"`
	OrderNumber        string          `json:"order_number"`
	UserID             string          `json:"user_id"`
	Email              string          `json:"email"`
	ItemCount          int             `json:"item_count"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Total              decimal.Decimal `json:"total"`
}

// Publisher is the part of *pkgkafka.Producer the event producer uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event", slog.String("aggregate_id", aggregateID))
	return nil
}

// PublishListChanged implements store.ChangePublisher.
func (p *Producer) PublishListChanged(ctx context.Context, kind store.Kind, userID string, items []domain.LineItem) error {
	data := ListChangedData{
		UserID:    userID,
		Items:     domain.CloneItems(items),
		ItemCount: domain.ItemCount(items),
		Subtotal:  pricing.Subtotal(items),
	}

	switch kind {
	case store.KindCart:
		return p.publish(ctx, TopicCartUpdated, TypeCartUpdated, userID, AggregateTypeCart, data)
	case store.KindWishlist:
		return p.publish(ctx, TopicWishlistUpdated, TypeWishlistUpdated, userID, AggregateTypeWishlist, data)
	}
	return fmt.Errorf("unknown list kind %q", kind)
}

// PublishOrderPlaced publishes order.placed for a persisted order.
func (p *Producer) PublishOrderPlaced(ctx context.Context, o *domain.Order) error {
	data := OrderPlacedData{
		OrderID:            o.ID,
		OrderNumber:        o.OrderNumber,
		UserID:             o.UserID,
		Email:              o.Email,
		ItemCount:          domain.ItemCount(o.Items),
		Subtotal:           o.Subtotal,
		CouponCode:         o.CouponCode,
		DiscountPercentage: o.DiscountPercentage,
		Total:              o.Total,
	}
	return p.publish(ctx, TopicOrderPlaced, TypeOrderPlaced, strconv.FormatInt(o.ID, 10), AggregateTypeOrder, data)
}
