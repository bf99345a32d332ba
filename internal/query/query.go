// Package query holds the current city query shared by the input and display views.
package query

import "sync"

// CityQuery is the validated city name driving a weather lookup. The zero value means no query.
type CityQuery string

// IsZero reports whether no city has been submitted yet.
func (q CityQuery) IsZero() bool {
	return q == ""
}

func (q CityQuery) String() string {
	return string(q)
}

// Store owns the current CityQuery. Writers go through Set; one subscriber is
// notified after each change. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	current    CityQuery
	subscriber func(CityQuery)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the stored query.
func (s *Store) Current() CityQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the stored query and notifies the subscriber when the value changed.
func (s *Store) Set(q CityQuery) {
	s.mu.Lock()
	changed := s.current != q
	s.current = q
	sub := s.subscriber
	s.mu.Unlock()

	if changed && sub != nil {
		sub(q)
	}
}

// Subscribe registers fn as the only subscriber, replacing any previous one. Pass nil to detach.
func (s *Store) Subscribe(fn func(CityQuery)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriber = fn
}
