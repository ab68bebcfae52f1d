package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Wishlist is a user's saved-for-later list. Membership only; every item
// has quantity 1.
type Wishlist struct {
	*list
}

// NewWishlist creates an empty, signed-out wishlist.
func NewWishlist(repo repository.ItemRepository, deps Deps) *Wishlist {
	return &Wishlist{list: newList(KindWishlist, wishlistMessages, repo, deps)}
}

// AddItem inserts productID. Adding a product that is already present makes
// no remote call and raises an info notice instead.
func (w *Wishlist) AddItem(ctx context.Context, productID int64, name string, price decimal.Decimal) error {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	uid, err := w.requireUser(ctx, w.msgs.signInAdd)
	if err != nil {
		return err
	}
	if err := w.validateNewItem(ctx, productID, name, price); err != nil {
		return err
	}
	if domain.FindItem(w.Items(), productID) >= 0 {
		w.deps.Notifier.Notify(ctx, notice.Info(w.msgs.alreadyPresent))
		return nil
	}

	item := domain.LineItem{ProductID: productID, Name: name, UnitPrice: price, Quantity: 1}
	err = w.attempt(ctx, func(rctx context.Context) error {
		return w.repo.Insert(rctx, uid, item)
	})
	if err == nil {
		return w.commit(ctx, uid, w.msgs.added)
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return w.fail(ctx, uid, w.msgs.addFailed, err)
	}

	// Already saved remotely; the cache was behind.
	if _, _, err := w.resync(ctx, uid, productID); err != nil {
		return err
	}
	w.deps.Notifier.Notify(ctx, notice.Info(w.msgs.alreadyPresent))
	return nil
}

// Contains reports whether productID is in the cached wishlist.
func (w *Wishlist) Contains(productID int64) bool {
	return domain.FindItem(w.Items(), productID) >= 0
}
