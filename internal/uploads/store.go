package uploads

import (
	"sync"
	"time"

	"rangeboard/internal/csvdata"
	"rangeboard/internal/grouping"
)

// Batch holds one processed upload between the upload call and a later
// fetch or save. Scoped by id, never global.
type Batch struct {
	ID        string
	Records   []csvdata.Record
	Groups    []grouping.Group
	Rejected  int
	CreatedAt time.Time
}

// Store is a short-lived keyed cache of upload batches. Entries expire
// after the TTL; a background sweep reclaims them.
type Store struct {
	mu      sync.Mutex
	batches map[string]*Batch
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		batches: make(map[string]*Batch),
		ttl:     ttl,
	}
	go s.sweepStale()
	return s
}

func (s *Store) Put(b *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = b
}

// Get returns the batch or nil once it has expired.
func (s *Store) Get(id string) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil
	}
	if time.Since(b.CreatedAt) > s.ttl {
		delete(s.batches, id)
		return nil
	}
	return b
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, b := range s.batches {
			if now.Sub(b.CreatedAt) > s.ttl {
				delete(s.batches, id)
			}
		}
		s.mu.Unlock()
	}
}
