package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/pricing"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Cart is a user's shopping cart.
type Cart struct {
	*list
}

// NewCart creates an empty, signed-out cart.
func NewCart(repo repository.ItemRepository, deps Deps) *Cart {
	return &Cart{list: newList(KindCart, cartMessages, repo, deps)}
}

// AddItem inserts productID with quantity 1, or bumps the quantity by one
// when the product is already in the cart. When the cache disagrees with
// the remote cart the write is rejected by the repository; the cart then
// reloads and retries the other path once.
func (c *Cart) AddItem(ctx context.Context, productID int64, name string, price decimal.Decimal) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	uid, err := c.requireUser(ctx, c.msgs.signInAdd)
	if err != nil {
		return err
	}
	if err := c.validateNewItem(ctx, productID, name, price); err != nil {
		return err
	}

	_, _, items := c.snapshot()
	if i := domain.FindItem(items, productID); i >= 0 {
		err := c.increment(ctx, uid, productID, items[i].Quantity)
		if !errors.Is(err, apperrors.ErrNotFound) {
			return c.finishAdd(ctx, uid, err)
		}
		// Gone remotely; insert it fresh.
		if _, _, err := c.resync(ctx, uid, productID); err != nil {
			return err
		}
	}

	item := domain.LineItem{ProductID: productID, Name: name, UnitPrice: price, Quantity: 1}
	err = c.attempt(ctx, func(rctx context.Context) error {
		return c.repo.Insert(rctx, uid, item)
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		return c.finishAdd(ctx, uid, err)
	}

	// The remote cart already has the row the cache is missing.
	i, items, err := c.resync(ctx, uid, productID)
	if err != nil {
		return err
	}
	if i < 0 {
		return c.fail(ctx, uid, c.msgs.addFailed, apperrors.Conflict("cart changed while adding item"))
	}
	return c.finishAdd(ctx, uid, c.increment(ctx, uid, productID, items[i].Quantity))
}

func (c *Cart) increment(ctx context.Context, userID string, productID int64, current int) error {
	qty := current + 1
	return c.attempt(ctx, func(rctx context.Context) error {
		return c.repo.UpdateQuantity(rctx, userID, productID, qty)
	})
}

func (c *Cart) finishAdd(ctx context.Context, userID string, err error) error {
	if err != nil {
		return c.fail(ctx, userID, c.msgs.addFailed, err)
	}
	return c.commit(ctx, userID, c.msgs.added)
}

// UpdateQuantity sets the quantity of productID. A quantity of zero or less
// removes the item.
func (c *Cart) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	uid, err := c.requireUser(ctx, c.msgs.signInUpdate)
	if err != nil {
		return err
	}
	if err := c.validateProductID(ctx, productID); err != nil {
		return err
	}
	if quantity <= 0 {
		return c.removeLocked(ctx, uid, productID)
	}
	return c.mutate(ctx, uid, c.msgs.updated, c.msgs.updateFailed, func(rctx context.Context) error {
		return c.repo.UpdateQuantity(rctx, uid, productID, quantity)
	})
}

// Subtotal prices the cached items.
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Items())
}
