package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMaxEntries bounds the in-process store.
const DefaultMaxEntries = 10000

// MemoryStore is an in-process Store bounded in size and age.
type MemoryStore struct {
	cache *expirable.LRU[string, State]
}

// NewMemoryStore creates an in-process store holding at most maxEntries states for ttl each.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{cache: expirable.NewLRU[string, State](maxEntries, nil, ttl)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, userID string) (State, bool, error) {
	state, ok := s.cache.Get(userID)
	return state, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, userID string, state State) error {
	s.cache.Add(userID, state)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.cache.Remove(userID)
	return nil
}
