package memory

import (
	"context"
	"sync"
	"time"

	"venuedesk/internal/app/middleware"
)

// IdempotencyStore keeps replayable command results for ttl. Expired keys are
// evicted lazily on lookup and on every save.
type IdempotencyStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	results map[string]storedResult
}

type storedResult struct {
	record    middleware.IdempotencyRecord
	expiresAt time.Time
}

// NewIdempotencyStore returns a store whose entries never expire when ttl is
// zero or negative.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		results: make(map[string]storedResult),
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[key]
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if s.expired(res, s.now()) {
		delete(s.results, key)
		return middleware.IdempotencyRecord{}, false, nil
	}
	return res.record, true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, res := range s.results {
		if s.expired(res, now) {
			delete(s.results, key)
		}
	}
	res := storedResult{record: rec}
	if s.ttl > 0 {
		res.expiresAt = now.Add(s.ttl)
	}
	s.results[rec.Key] = res
	return nil
}

// Len reports how many keys are currently held.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *IdempotencyStore) expired(res storedResult, now time.Time) bool {
	return !res.expiresAt.IsZero() && !now.Before(res.expiresAt)
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
