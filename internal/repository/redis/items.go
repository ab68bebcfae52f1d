// Package redis implements repository.ItemRepository on Redis, one hash per
// user keyed by product id.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// entry is the value stored in each hash field.
type entry struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// ItemRepository stores a list under "<prefix>:<userID>". Unlike the
// postgres repository it keeps the name and price given to Insert.
type ItemRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCartRepository returns a repository for carts. A zero ttl keeps keys
// forever.
func NewCartRepository(client *redis.Client, ttl time.Duration) *ItemRepository {
	return &ItemRepository{client: client, prefix: "cart", ttl: ttl}
}

// NewWishlistRepository returns a repository for wishlists.
func NewWishlistRepository(client *redis.Client, ttl time.Duration) *ItemRepository {
	return &ItemRepository{client: client, prefix: "wishlist", ttl: ttl}
}

func (r *ItemRepository) key(userID string) string {
	return r.prefix + ":" + userID
}

func field(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// touch refreshes the key's TTL after a write.
func (r *ItemRepository) touch(ctx context.Context, userID string) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.client.Expire(ctx, r.key(userID), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire %s: %w", r.prefix, err)
	}
	return nil
}

// ListByUser returns the user's items ordered by product id.
func (r *ItemRepository) ListByUser(ctx context.Context, userID string) ([]domain.LineItem, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", r.prefix, err)
	}

	items := make([]domain.LineItem, 0, len(fields))
	for f, raw := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s field %q: %w", r.prefix, f, err)
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s item %d: %w", r.prefix, id, err)
		}
		items = append(items, domain.LineItem{ProductID: id, Name: e.Name, UnitPrice: e.Price, Quantity: e.Quantity})
	}
	slices.SortFunc(items, func(a, b domain.LineItem) int {
		switch {
		case a.ProductID < b.ProductID:
			return -1
		case a.ProductID > b.ProductID:
			return 1
		}
		return 0
	})
	return items, nil
}

// Insert adds the item with its quantity (at least 1). An existing field is
// a conflict.
func (r *ItemRepository) Insert(ctx context.Context, userID string, item domain.LineItem) error {
	data, err := json.Marshal(entry{Name: item.Name, Price: item.UnitPrice, Quantity: max(item.Quantity, 1)})
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", r.prefix, err)
	}

	ok, err := r.client.HSetNX(ctx, r.key(userID), field(item.ProductID), data).Result()
	if err != nil {
		return fmt.Errorf("redis hsetnx %s: %w", r.prefix, err)
	}
	if !ok {
		return apperrors.Conflict(fmt.Sprintf("product %d is already in %s", item.ProductID, r.prefix))
	}
	return r.touch(ctx, userID)
}

// UpdateQuantity rewrites the quantity of an existing field.
func (r *ItemRepository) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	if quantity <= 0 {
		return apperrors.ValidationFailed(fmt.Sprintf("quantity %d is not allowed", quantity))
	}

	key := r.key(userID)
	raw, err := r.client.HGet(ctx, key, field(productID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return apperrors.NotFound(r.prefix+" item", field(productID))
		}
		return fmt.Errorf("redis hget %s: %w", r.prefix, err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return fmt.Errorf("unmarshal %s item %d: %w", r.prefix, productID, err)
	}
	e.Quantity = quantity
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", r.prefix, err)
	}

	if err := r.client.HSet(ctx, key, field(productID), data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", r.prefix, err)
	}
	return r.touch(ctx, userID)
}

// Delete removes one field; a missing field is not an error.
func (r *ItemRepository) Delete(ctx context.Context, userID string, productID int64) error {
	if err := r.client.HDel(ctx, r.key(userID), field(productID)).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", r.prefix, err)
	}
	return nil
}

// DeleteAllByUser drops the user's hash.
func (r *ItemRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.prefix, err)
	}
	return nil
}
