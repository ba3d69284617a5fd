package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/commerce"
)

var (
	ErrQuantityRange     = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("not enough stock for requested quantity")
	ErrLineNotFound      = errors.New("cart line not found")
)

// Client is the slice of the cart resource API the store needs.
type Client interface {
	Fetch(ctx context.Context) ([]commerce.CartLine, error)
	AddItem(ctx context.Context, productVariantID int64, quantity int) error
	UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error
	UpdateSelection(ctx context.Context, cartItemID int64, selected bool) error
	UpdateAllSelection(ctx context.Context, selected bool) error
	RemoveItem(ctx context.Context, cartItemID int64) error
	RemoveItems(ctx context.Context, cartItemIDs []int64) error
	Merge(ctx context.Context, guestToken string) error
}

// Store is the single source of truth for one session's cart. Every mutation
// goes to the backend first and the full line list is re-fetched on success;
// a failed call leaves the in-memory state untouched, so the store never
// diverges from server-computed stock and pricing.
type Store struct {
	api   Client
	cache Cache // optional
	key   string
	log   *slog.Logger

	sfg singleflight.Group

	mu    sync.RWMutex
	lines []commerce.CartLine
}

func NewStore(api Client, cache Cache, sessionKey string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{api: api, cache: cache, key: sessionKey, log: log}
}

// Lines returns a copy of the current cart lines.
func (s *Store) Lines() []commerce.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]commerce.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// SelectedLines returns a copy of the lines flagged for checkout.
func (s *Store) SelectedLines() []commerce.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []commerce.CartLine
	for _, line := range s.lines {
		if line.Selected {
			out = append(out, line)
		}
	}
	return out
}

func (s *Store) line(cartItemID int64) (commerce.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.CartItemID == cartItemID {
			return l, true
		}
	}
	return commerce.CartLine{}, false
}

// Refresh re-fetches the cart. Concurrent refreshes of the same session are
// collapsed into one backend call.
func (s *Store) Refresh(ctx context.Context) error {
	v, err, _ := s.sfg.Do(s.key, func() (interface{}, error) {
		if s.cache != nil {
			lines, cacheErr := s.cache.Get(ctx, s.key)
			if cacheErr == nil {
				return lines, nil
			}
			if !errors.Is(cacheErr, ErrCacheMiss) {
				s.log.Warn("cart cache get failed", "err", cacheErr)
			}
		}

		lines, fetchErr := s.api.Fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}

		if s.cache != nil {
			go func() {
				cacheCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if setErr := s.cache.Set(cacheCtx, s.key, lines); setErr != nil {
					s.log.Warn("cart cache set failed", "err", setErr)
				}
			}()
		}
		return lines, nil
	})
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}

	s.mu.Lock()
	s.lines = v.([]commerce.CartLine)
	s.mu.Unlock()
	return nil
}

func (s *Store) AddItem(ctx context.Context, productVariantID int64, quantity int) error {
	if quantity < 1 {
		return ErrQuantityRange
	}
	return s.mutate(ctx, func() error { return s.api.AddItem(ctx, productVariantID, quantity) })
}

func (s *Store) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	if quantity < 1 {
		return ErrQuantityRange
	}
	line, ok := s.line(cartItemID)
	if !ok {
		return ErrLineNotFound
	}
	if line.OutOfStock && quantity > line.StockQuantity {
		return ErrInsufficientStock
	}
	return s.mutate(ctx, func() error { return s.api.UpdateQuantity(ctx, cartItemID, quantity) })
}

func (s *Store) UpdateSelection(ctx context.Context, cartItemID int64, selected bool) error {
	if _, ok := s.line(cartItemID); !ok {
		return ErrLineNotFound
	}
	return s.mutate(ctx, func() error { return s.api.UpdateSelection(ctx, cartItemID, selected) })
}

func (s *Store) UpdateAllSelection(ctx context.Context, selected bool) error {
	return s.mutate(ctx, func() error { return s.api.UpdateAllSelection(ctx, selected) })
}

func (s *Store) RemoveItem(ctx context.Context, cartItemID int64) error {
	if _, ok := s.line(cartItemID); !ok {
		return ErrLineNotFound
	}
	return s.mutate(ctx, func() error { return s.api.RemoveItem(ctx, cartItemID) })
}

func (s *Store) RemoveSelected(ctx context.Context) error {
	var ids []int64
	for _, line := range s.SelectedLines() {
		ids = append(ids, line.CartItemID)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.mutate(ctx, func() error { return s.api.RemoveItems(ctx, ids) })
}

// RemovePurchased clears the given lines after a confirmed payment.
func (s *Store) RemovePurchased(ctx context.Context, cartItemIDs []int64) error {
	if len(cartItemIDs) == 0 {
		return nil
	}
	return s.mutate(ctx, func() error { return s.api.RemoveItems(ctx, cartItemIDs) })
}

// MergeGuest folds a guest cart into this (authenticated) session's cart.
// The merge call completes before the refresh so the merged state is never
// missed by a subsequent read.
func (s *Store) MergeGuest(ctx context.Context, guestToken string) error {
	if guestToken == "" {
		return nil
	}
	return s.mutate(ctx, func() error { return s.api.Merge(ctx, guestToken) })
}

// mutate runs a backend mutation and, on success only, invalidates the cache
// and re-fetches. Prior in-memory state survives a failed call unchanged.
func (s *Store) mutate(ctx context.Context, call func() error) error {
	if err := call(); err != nil {
		return err
	}
	s.invalidate()
	return s.Refresh(ctx)
}

func (s *Store) invalidate() {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, s.key); err != nil {
		s.log.Warn("cart cache invalidate failed", "err", err)
	}
}
