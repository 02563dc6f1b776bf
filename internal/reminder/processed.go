package reminder

import (
	"sync"
	"time"
)

// ProcessedSet remembers the log ids that already opened an alert.
// An id is never removed while it could still qualify; Prune only drops ids
// whose scheduled time has left the alarm window.
type ProcessedSet struct {
	mu  sync.Mutex
	ids map[string]time.Time
}

// NewProcessedSet creates an empty set
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{ids: make(map[string]time.Time)}
}

// Add marks id as processed
func (s *ProcessedSet) Add(id string, scheduled time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = scheduled
}

// Contains reports whether id was processed
func (s *ProcessedSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Prune drops ids scheduled at or before cutoff and returns how many were dropped
func (s *ProcessedSet) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, scheduled := range s.ids {
		if !scheduled.After(cutoff) {
			delete(s.ids, id)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of tracked ids
func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
