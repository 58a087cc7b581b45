package cache

import (
	"context"
	"sync"
	"time"

	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/usecase"
)

// DefaultTTL is how long a normalized listing stays servable.
const DefaultTTL = 24 * time.Hour

type memoryEntry struct {
	listing   *usecase.ResourceListing
	createdAt time.Time
}

// MemoryStore is a process-local listing cache. Expired entries are dropped lazily on
// read, by PurgeExpired, or when room is needed for a new key.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	clock      clock.Clock
}

// NewMemoryStore creates a store; maxEntries <= 0 means unbounded.
func NewMemoryStore(ttl time.Duration, maxEntries int, clk clock.Clock) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clk,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*usecase.ResourceListing, bool, error) {
	now := s.clock.Now()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !s.expired(e, now) {
		return e.listing, true, nil
	}

	s.mu.Lock()
	// a concurrent Set may have refreshed the key since the read lock was released
	if cur, ok := s.entries[key]; ok && s.expired(cur, now) {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil, false, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, listing *usecase.ResourceListing) error {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.purgeLocked(now)
		if len(s.entries) >= s.maxEntries {
			s.evictOldestLocked()
		}
	}
	s.entries[key] = memoryEntry{listing: listing, createdAt: now}
	return nil
}

// PurgeExpired removes every expired entry and reports how many were dropped.
func (s *MemoryStore) PurgeExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(now)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return now.Sub(e.createdAt) > s.ttl
}

func (s *MemoryStore) purgeLocked(now time.Time) int {
	n := 0
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

func (s *MemoryStore) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range s.entries {
		if !found || e.createdAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.createdAt, true
		}
	}
	if found {
		delete(s.entries, oldestKey)
	}
}
