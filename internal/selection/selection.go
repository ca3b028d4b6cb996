// Package selection holds the feature/target column selection shared by
// the feature, split, train, and predict panels. A single Store is
// created at dashboard startup and carried to panels on the context.
package selection

import (
	"context"
	"sync"
)

// Store is the shared selection state. Mutators keep the invariant that
// the target column is never also a selected feature.
type Store struct {
	mu       sync.RWMutex
	features []string
	target   string
}

// NewStore creates an empty selection store.
func NewStore() *Store {
	return &Store{}
}

// Features returns the selected feature columns in insertion order.
func (s *Store) Features() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.features))
	copy(out, s.features)
	return out
}

// Target returns the target column, or "" when none is selected.
func (s *Store) Target() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// SetFeatures replaces the feature set with the given list, preserving
// the caller's order. The current target column is dropped from the
// list if present.
func (s *Store) SetFeatures(features []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(features))
	for _, f := range features {
		if s.target != "" && f == s.target {
			continue
		}
		next = append(next, f)
	}
	s.features = next
}

// SetTarget sets the target column. If the column is currently a
// selected feature it is removed from the feature set in the same
// update.
func (s *Store) SetTarget(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.target = target
	if target == "" {
		return
	}
	next := s.features[:0]
	for _, f := range s.features {
		if f != target {
			next = append(next, f)
		}
	}
	s.features = next
}

// Clear resets both the feature set and the target.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = nil
	s.target = ""
}

type ctxKey struct{}

// NewContext returns a context carrying the store.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store carried on the context. Calling it
// from code that was not started under NewContext is a wiring bug, so
// it panics rather than returning an empty store.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok {
		panic("selection: FromContext called outside a selection scope")
	}
	return s
}
