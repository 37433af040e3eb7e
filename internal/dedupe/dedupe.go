// Package dedupe tracks contact keys already handled within a single run.
package dedupe

import "leadscout/internal/model"

// Set holds the dedup keys seen so far. It is owned by the run's single
// worker goroutine and is not safe for concurrent use.
type Set struct {
	keys map[string]struct{}
}

// NewSet returns an empty set; one is created per run.
func NewSet() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// IsDuplicate reports whether the record's key was already seen. It has no
// side effect; repeated calls without MarkSeen return the same answer.
func (s *Set) IsDuplicate(rec *model.ContactRecord) bool {
	_, ok := s.keys[rec.DedupKey()]
	return ok
}

// MarkSeen records the record's key.
func (s *Set) MarkSeen(rec *model.ContactRecord) {
	s.keys[rec.DedupKey()] = struct{}{}
}

// Warm preloads raw keys, e.g. from a previous run's stored contacts.
func (s *Set) Warm(keys []string) {
	for _, k := range keys {
		if k != "" {
			s.keys[k] = struct{}{}
		}
	}
}

// Len returns the number of distinct keys seen.
func (s *Set) Len() int {
	return len(s.keys)
}
