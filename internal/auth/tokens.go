package auth

import "sync"

// TokenPair holds the bearer and refresh tokens for one session. The backend
// issues both at login; the refresh token is only ever sent to the token
// refresh endpoint.
type TokenPair struct {
	Access  string
	Refresh string
}

func (p TokenPair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// TokenStore is the per-session holder of auth tokens. The gateway backs it
// with request/response cookies; tests use MemoryTokenStore.
type TokenStore interface {
	Tokens() TokenPair
	Set(pair TokenPair)
	Clear()
}

type MemoryTokenStore struct {
	mu   sync.RWMutex
	pair TokenPair
}

func NewMemoryTokenStore(pair TokenPair) *MemoryTokenStore {
	return &MemoryTokenStore{pair: pair}
}

func (s *MemoryTokenStore) Tokens() TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

func (s *MemoryTokenStore) Set(pair TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
}
