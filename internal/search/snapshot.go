package search

import (
	"sync"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

// Snapshot is the fallback dataset: the most recently seen full set of
// approved listings, held in memory. The service refreshes it after
// startup and after every write that changes public visibility, so the
// fallback path serves data that is at worst slightly stale.
type Snapshot struct {
	mu       sync.RWMutex
	listings []model.Listing
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Set replaces the snapshot contents.
func (s *Snapshot) Set(ls []model.Listing) {
	cp := make([]model.Listing, len(ls))
	copy(cp, ls)
	s.mu.Lock()
	s.listings = cp
	s.mu.Unlock()
}

// Listings returns a copy of the snapshot so callers can filter and sort
// without holding the lock.
func (s *Snapshot) Listings() []model.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.Listing, len(s.listings))
	copy(cp, s.listings)
	return cp
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}
