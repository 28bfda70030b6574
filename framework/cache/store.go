package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrCacheMiss is returned by Store.Get when the key holds nothing.
var ErrCacheMiss = errors.New("cache: miss")

// Store is a byte-oriented key/value store for serialized definitions.
type Store interface {
	// Get returns ErrCacheMiss when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ── MemoryStore ───────────────────────────────────────────────────────────────

// MemoryStore keeps entries in a size-bounded LRU with optional expiry.
// Entries do not survive the process.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore holds at most size entries (0 means unbounded), each for
// ttl (0 means forever).
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, append([]byte(nil), value...))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int { return s.lru.Len() }
