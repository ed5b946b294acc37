package cache

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/refundlens/internal/orders"
)

// Entry is a captured order collection.
type Entry struct {
	Orders     []orders.RawOrder `json:"orders"`
	CapturedAt time.Time         `json:"capturedAt"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt) < ttl
}

// Store persists entries by key. Load reports ok=false for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, key string, entry Entry) error
	// Sweep removes entries older than ttl and returns how many it removed.
	Sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]Entry{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if now.Sub(entry.CapturedAt) > ttl {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
