package memory

import (
	"context"
	"sync"

	"venuedesk/internal/domain/allocation"
	domainbooking "venuedesk/internal/domain/booking"
)

// ClaimStore is a process-local slot registry. Claim checks and inserts under
// one lock, so two racing claims on a shared key cannot both succeed.
type ClaimStore struct {
	mu     sync.Mutex
	owners map[string]domainbooking.BookingID
}

func NewClaimStore() *ClaimStore {
	return &ClaimStore{owners: make(map[string]domainbooking.BookingID)}
}

func (s *ClaimStore) Claim(_ context.Context, bookingID domainbooking.BookingID, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return allocation.ErrSlotTaken
		}
		seen[k] = struct{}{}
		if _, taken := s.owners[k]; taken {
			return allocation.ErrSlotTaken
		}
	}
	for _, k := range keys {
		s.owners[k] = bookingID
	}
	return nil
}

func (s *ClaimStore) Release(_ context.Context, bookingID domainbooking.BookingID) error {
	s.release(bookingID)
	return nil
}

func (s *ClaimStore) release(bookingID domainbooking.BookingID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var freed []string
	for k, owner := range s.owners {
		if owner == bookingID {
			delete(s.owners, k)
			freed = append(freed, k)
		}
	}
	return freed
}

func (s *ClaimStore) releaseKeys(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.owners, k)
	}
}

func (s *ClaimStore) restore(bookingID domainbooking.BookingID, keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.owners[k] = bookingID
	}
}

// Held reports how many keys are currently claimed.
func (s *ClaimStore) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owners)
}

var _ allocation.ClaimStore = (*ClaimStore)(nil)
