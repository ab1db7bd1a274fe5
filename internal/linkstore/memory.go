package linkstore

import (
	"context"
	"sync"
	"time"

	"github.com/opensource-finance/harrier/internal/domain"
)

// MemoryStore is a thread-safe in-process link store. Expiry is enforced
// lazily on read rather than with scheduled callbacks, so restarts never
// leave orphaned timers behind.
type MemoryStore struct {
	mu         sync.RWMutex
	maxEntries int
	entries    map[string]*domain.LinkEntry

	now func() time.Time
}

// NewMemoryStore creates a memory link store holding at most maxEntries
// live entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]*domain.LinkEntry),
		now:        time.Now,
	}
}

// Put stores an entry under token with the given TTL. Caller-stamped
// lifecycle timestamps are kept so the expiry a caller advertises is the
// expiry the store enforces; only missing ones are filled in.
func (s *MemoryStore) Put(ctx context.Context, token string, entry *domain.LinkEntry, ttl time.Duration) error {
	now := s.now()

	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(now)

	// Over capacity: evict the oldest entry to bound memory.
	for len(s.entries) >= s.maxEntries {
		s.removeOldestLocked()
	}

	s.entries[token] = &stored
	return nil
}

// Get retrieves the entry for token, deleting it when expired.
func (s *MemoryStore) Get(ctx context.Context, token string) (*domain.LinkEntry, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, false, nil
	}
	if entry.Expired(now) {
		delete(s.entries, token)
		return nil, false, nil
	}
	return entry, true, nil
}

// Delete removes an entry. Absent tokens are not an error.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Ping checks store health.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close releases all entries.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*domain.LinkEntry)
	return nil
}

// Stats returns the live entry count and capacity.
func (s *MemoryStore) Stats() (size int, capacity int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), s.maxEntries
}

func (s *MemoryStore) purgeExpiredLocked(now time.Time) {
	for token, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, token)
		}
	}
}

func (s *MemoryStore) removeOldestLocked() {
	var oldestToken string
	var oldest time.Time
	first := true
	for token, entry := range s.entries {
		if first || entry.CreatedAt.Before(oldest) {
			oldestToken = token
			oldest = entry.CreatedAt
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestToken)
	}
}
