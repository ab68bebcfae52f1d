// Package session owns the per-user handles (identity, cart and wishlist)
// for signed-in users. A handle lives from sign-in until sign-out or until
// it has been idle longer than the configured TTL.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Session is one signed-in user's state.
type Session struct {
	UserID   string
	Cart     *store.Cart
	Wishlist *store.Wishlist

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) signOut() {
	s.Cart.SignOut()
	s.Wishlist.SignOut()
}

// Config holds manager settings.
type Config struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Manager creates, finds and tears down sessions.
type Manager struct {
	carts     repository.ItemRepository
	wishlists repository.ItemRepository
	deps      store.Deps
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	group    singleflight.Group
}

// NewManager creates a Manager.
func NewManager(carts, wishlists repository.ItemRepository, deps store.Deps, cfg Config, logger *slog.Logger) *Manager {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Manager{
		carts:     carts,
		wishlists: wishlists,
		deps:      deps,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// SignIn loads the user's cart and wishlist and registers the session,
// replacing any existing one. Both lists must load for the session to be
// kept.
func (m *Manager) SignIn(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("sign in required")
	}

	v, err, _ := m.group.Do(userID, func() (any, error) {
		s := &Session{
			UserID:   userID,
			Cart:     store.NewCart(m.carts, m.deps),
			Wishlist: store.NewWishlist(m.wishlists, m.deps),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.Cart.SignIn(gctx, userID) })
		g.Go(func() error { return s.Wishlist.SignIn(gctx, userID) })
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("sign in %s: %w", userID, err)
		}

		s.touch(m.now())
		m.mu.Lock()
		old := m.sessions[userID]
		m.sessions[userID] = s
		m.mu.Unlock()
		if old != nil {
			old.signOut()
		}

		m.logger.InfoContext(ctx, "session started",
			slog.String("user_id", userID),
			slog.Int("cart_items", len(s.Cart.Items())),
			slog.Int("wishlist_items", len(s.Wishlist.Items())),
		)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Get returns the user's session, signing in when none exists.
func (m *Manager) Get(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("sign in required")
	}
	// Touch under the lock so Sweep cannot evict the session in between.
	m.mu.RLock()
	s, ok := m.sessions[userID]
	if ok {
		s.touch(m.now())
	}
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	return m.SignIn(ctx, userID)
}

// Guest returns a signed-out session. Every list operation on it signals
// Unauthenticated with the list's sign-in prompt and makes no remote call.
func (m *Manager) Guest() *Session {
	return &Session{
		Cart:     store.NewCart(m.carts, m.deps),
		Wishlist: store.NewWishlist(m.wishlists, m.deps),
	}
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// SignOut clears the user's cached lists and drops the session. Signing
// out a user without a session is a no-op.
func (m *Manager) SignOut(ctx context.Context, userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		s.signOut()
		m.logger.InfoContext(ctx, "session ended", slog.String("user_id", userID))
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep ends every session idle for longer than IdleTTL and returns how
// many were ended.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTTL)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.signOut()
	}
	if len(expired) > 0 {
		m.logger.InfoContext(ctx, "idle sessions evicted", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.signOut()
	}
}
