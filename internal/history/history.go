// Package history keeps a bounded in-memory record of completed query turns.
package history

import (
	"sync"

	"github.com/intellecta/intellecta/internal/models"
)

// Store is a fixed-capacity ring buffer of query history entries. When full,
// appending overwrites the oldest entry by insertion order. Safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	entries  []*models.QueryHistoryEntry
	capacity int
	start    int
	size     int
}

// NewStore creates a history store retaining at most capacity entries.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 200
	}
	return &Store{
		entries:  make([]*models.QueryHistoryEntry, capacity),
		capacity: capacity,
	}
}

// Append records an entry, evicting the oldest when at capacity.
func (s *Store) Append(entry *models.QueryHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := (s.start + s.size) % s.capacity
	if s.size == s.capacity {
		s.entries[s.start] = entry
		s.start = (s.start + 1) % s.capacity
		return
	}
	s.entries[idx] = entry
	s.size++
}

// List returns up to limit entries, newest first. limit <= 0 returns all
// retained entries.
func (s *Store) List(limit int) []*models.QueryHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*models.QueryHistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := (s.start + s.size - 1 - i) % s.capacity
		out = append(out, s.entries[idx])
	}
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Delete removes the entry with the given ID. Returns true if an entry was
// removed; deleting an absent ID is a no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.size; i++ {
		idx := (s.start + i) % s.capacity
		if s.entries[idx].ID != id {
			continue
		}
		// Shift the younger entries down one slot.
		for j := i; j < s.size-1; j++ {
			from := (s.start + j + 1) % s.capacity
			to := (s.start + j) % s.capacity
			s.entries[to] = s.entries[from]
		}
		s.entries[(s.start+s.size-1)%s.capacity] = nil
		s.size--
		return true
	}
	return false
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		s.entries[i] = nil
	}
	s.start = 0
	s.size = 0
}
