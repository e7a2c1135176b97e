package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/prepdeck/examprep-service/internal/attempt"
)

// MemoryStore is the in-process variant for tests and single-node runs.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	result    *attempt.Result
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// NewMemoryStoreWithClock is for tests that need deterministic expiry.
func NewMemoryStoreWithClock(ttl time.Duration, now func() time.Time) *MemoryStore {
	s := NewMemoryStore(ttl)
	s.now = now
	return s
}

func (s *MemoryStore) Put(ctx context.Context, result *attempt.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[result.AttemptID] = memoryEntry{
		result:    result,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, attemptID string) (*attempt.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[attemptID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.entries, attemptID)

	if s.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	return entry.result, nil
}
