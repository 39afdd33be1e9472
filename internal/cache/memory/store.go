// Package memory keeps cache entries in-process for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JakeFAU/pageinfo/internal/cache"
)

// Clock returns the current time. Entry expiry is judged against it.
type Clock interface {
	Now() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a cache.Store held in a map guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	clock   Clock
	entries map[string]entry
}

var _ cache.Store = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore(clock Clock) *Store {
	return &Store{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns a copy of the stored value, or cache.ErrMiss once the entry's
// TTL has elapsed.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, cache.ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close drops all entries.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	return nil
}

// Len reports how many entries are held, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt)
}

func (s *Store) evictExpiredLocked() {
	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
		}
	}
}
