package checkout

import (
	"context"
	"sync"
	"time"
)

// Attempt is the record of one checkout that survives the provider redirect.
// It is the trusted source for amount, points, coupon and cart-item ids when
// the provider hands control back; the redirect query parameters are not.
type Attempt struct {
	ExternalOrderKey string  `json:"externalOrderKey"`
	OrderID          int64   `json:"orderId"`
	UserID           int64   `json:"userId"`
	SessionID        string  `json:"sessionId"`
	Amount           int64   `json:"amount"`
	PointsUsed       int64   `json:"pointsUsed"`
	UserCouponID     int64   `json:"userCouponId,omitempty"`
	CartItemIDs      []int64 `json:"cartItemIds"`
	Status           Status  `json:"status"`
	FailReason       string  `json:"failReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttemptStore persists attempts between the payment hand-off and the
// provider's return, keyed by the external order key.
type AttemptStore interface {
	Save(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, externalOrderKey string) (*Attempt, error)
}

type MemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]Attempt
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{attempts: make(map[string]Attempt)}
}

func (s *MemoryAttemptStore) Save(_ context.Context, a *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.UpdatedAt = time.Now()
	s.attempts[a.ExternalOrderKey] = *a
	return nil
}

func (s *MemoryAttemptStore) Get(_ context.Context, externalOrderKey string) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[externalOrderKey]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return &a, nil
}
