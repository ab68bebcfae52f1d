package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// RemoteTimeout bounds each remote call a list makes.
const RemoteTimeout = 10 * time.Second

// ChangePublisher is told about every successful mutation.
type ChangePublisher interface {
	PublishListChanged(ctx context.Context, kind Kind, userID string, items []domain.LineItem) error
}

// Deps are the collaborators shared by carts and wishlists.
type Deps struct {
	Notifier  notice.Notifier
	Publisher ChangePublisher // optional
	Logger    *slog.Logger
}

// list is the state machine shared by Cart and Wishlist. opMu serializes
// whole operations (write plus reload); mu guards the snapshot so readers
// never wait on a remote call.
type list struct {
	kind Kind
	msgs messages
	repo repository.ItemRepository
	deps Deps

	opMu sync.Mutex

	mu     sync.RWMutex
	state  State
	userID string
	items  []domain.LineItem
}

func newList(kind Kind, msgs messages, repo repository.ItemRepository, deps Deps) *list {
	if deps.Notifier == nil {
		deps.Notifier = notice.ContextNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &list{kind: kind, msgs: msgs, repo: repo, deps: deps, items: []domain.LineItem{}}
}

// remoteContext detaches ctx from the caller's cancellation: a started
// remote call runs to completion even if the request goes away.
func remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), RemoteTimeout)
}

func (l *list) log(ctx context.Context) *slog.Logger {
	if lg := logger.FromContext(ctx); lg != slog.Default() {
		return lg
	}
	return l.deps.Logger
}

func (l *list) snapshot() (State, string, []domain.LineItem) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, l.userID, domain.CloneItems(l.items)
}

func (l *list) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// State returns the current state.
func (l *list) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// UserID returns the signed-in user, or "".
func (l *list) UserID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.userID
}

// Items returns a copy of the last successfully loaded items.
func (l *list) Items() []domain.LineItem {
	_, _, items := l.snapshot()
	return items
}

// requireUser returns the signed-in user or signals Unauthenticated with
// the given sign-in prompt.
func (l *list) requireUser(ctx context.Context, prompt string) (string, error) {
	l.mu.RLock()
	uid := l.userID
	l.mu.RUnlock()
	if uid == "" {
		l.deps.Notifier.Notify(ctx, notice.Error(prompt))
		return "", apperrors.Unauthenticated(prompt)
	}
	return uid, nil
}

// SignIn binds the list to userID and loads it: Empty -> Loading -> Ready.
func (l *list) SignIn(ctx context.Context, userID string) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if strings.TrimSpace(userID) == "" {
		return apperrors.Unauthenticated("sign in required")
	}
	l.mu.Lock()
	l.userID = userID
	l.items = []domain.LineItem{}
	l.state = Loading
	l.mu.Unlock()

	return l.reloadLocked(ctx, userID)
}

// SignOut drops the cached items and returns to Empty. No remote call is made.
func (l *list) SignOut() {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.mu.Lock()
	l.userID = ""
	l.items = []domain.LineItem{}
	l.state = Empty
	l.mu.Unlock()
}

// Reload re-reads the full list.
func (l *list) Reload(ctx context.Context) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	uid, err := l.requireUser(ctx, l.msgs.signInUpdate)
	if err != nil {
		return err
	}
	l.setState(Loading)
	return l.reloadLocked(ctx, uid)
}

// reloadLocked reads the remote list and replaces the cache. On failure
// the previous cache is kept. Callers hold opMu and have set Loading.
func (l *list) reloadLocked(ctx context.Context, userID string) error {
	rctx, cancel := remoteContext(ctx)
	defer cancel()

	items, err := l.repo.ListByUser(rctx, userID)
	if err != nil {
		l.setState(Ready)
		l.log(ctx).ErrorContext(ctx, "list reload failed",
			slog.String("list", string(l.kind)),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		l.deps.Notifier.Notify(ctx, notice.Error(l.msgs.loadFailed))
		return apperrors.AsRemoteCallFailed(l.msgs.loadFailed, err)
	}

	l.mu.Lock()
	l.items = domain.CloneItems(items)
	l.state = Ready
	l.mu.Unlock()
	return nil
}

// mutate runs write as Ready -> Mutating, then reloads. failMsg and okMsg
// are the notices for each outcome.
func (l *list) mutate(ctx context.Context, userID, okMsg, failMsg string, write func(ctx context.Context) error) error {
	if err := l.attempt(ctx, write); err != nil {
		return l.fail(ctx, userID, failMsg, err)
	}
	return l.commit(ctx, userID, okMsg)
}

// attempt runs write in Mutating and returns its error untouched. The
// state is back to Ready when it fails.
func (l *list) attempt(ctx context.Context, write func(ctx context.Context) error) error {
	l.setState(Mutating)

	rctx, cancel := remoteContext(ctx)
	defer cancel()
	if err := write(rctx); err != nil {
		l.setState(Ready)
		return err
	}
	return nil
}

// fail reports a failed write. Errors the repository already classified
// (not found, conflict) keep their kind.
func (l *list) fail(ctx context.Context, userID, failMsg string, err error) error {
	l.log(ctx).ErrorContext(ctx, "list write failed",
		slog.String("list", string(l.kind)),
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
	l.deps.Notifier.Notify(ctx, notice.Error(failMsg))
	return apperrors.AsRemoteCallFailed(failMsg, err)
}

// commit reloads after a successful write and announces the change.
func (l *list) commit(ctx context.Context, userID, okMsg string) error {
	l.setState(Loading)
	if err := l.reloadLocked(ctx, userID); err != nil {
		return err
	}

	l.deps.Notifier.Notify(ctx, notice.Success(okMsg))
	l.publish(ctx, userID)
	return nil
}

// resync reloads after a write was rejected because the remote list
// already holds productID, and returns the reloaded position of it.
func (l *list) resync(ctx context.Context, userID string, productID int64) (int, []domain.LineItem, error) {
	l.log(ctx).WarnContext(ctx, "list cache out of date, reloading",
		slog.String("list", string(l.kind)),
		slog.String("user_id", userID),
		slog.Int64("product_id", productID),
	)
	l.setState(Loading)
	if err := l.reloadLocked(ctx, userID); err != nil {
		return -1, nil, err
	}
	_, _, items := l.snapshot()
	return domain.FindItem(items, productID), items, nil
}

func (l *list) publish(ctx context.Context, userID string) {
	if l.deps.Publisher == nil {
		return
	}
	items := l.Items()
	if err := l.deps.Publisher.PublishListChanged(ctx, l.kind, userID, items); err != nil {
		l.log(ctx).ErrorContext(ctx, "failed to publish list change",
			slog.String("list", string(l.kind)),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// removeLocked deletes one row and reloads.
func (l *list) removeLocked(ctx context.Context, userID string, productID int64) error {
	return l.mutate(ctx, userID, l.msgs.removed, l.msgs.removeFailed, func(rctx context.Context) error {
		return l.repo.Delete(rctx, userID, productID)
	})
}

// RemoveItem deletes the row for productID. Removing an absent product is a
// no-op against the remote list.
func (l *list) RemoveItem(ctx context.Context, productID int64) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	uid, err := l.requireUser(ctx, l.msgs.signInRemove)
	if err != nil {
		return err
	}
	if err := l.validateProductID(ctx, productID); err != nil {
		return err
	}
	return l.removeLocked(ctx, uid, productID)
}

// Clear deletes every row and empties the cache without a reload.
func (l *list) Clear(ctx context.Context) error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	uid, err := l.requireUser(ctx, l.msgs.signInClear)
	if err != nil {
		return err
	}

	err = l.attempt(ctx, func(rctx context.Context) error {
		return l.repo.DeleteAllByUser(rctx, uid)
	})
	if err != nil {
		return l.fail(ctx, uid, l.msgs.clearFailed, err)
	}

	l.mu.Lock()
	l.items = []domain.LineItem{}
	l.state = Ready
	l.mu.Unlock()

	l.deps.Notifier.Notify(ctx, notice.Success(l.msgs.cleared))
	l.publish(ctx, uid)
	return nil
}

func (l *list) validateProductID(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return l.invalid(ctx, "product id must be positive")
	}
	return nil
}

func (l *list) validateNewItem(ctx context.Context, productID int64, name string, price decimal.Decimal) error {
	if err := l.validateProductID(ctx, productID); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return l.invalid(ctx, "product name is required")
	}
	if price.IsNegative() {
		return l.invalid(ctx, "price must not be negative")
	}
	return nil
}

func (l *list) invalid(ctx context.Context, msg string) error {
	l.deps.Notifier.Notify(ctx, notice.Error(msg))
	return apperrors.ValidationFailed(msg)
}
