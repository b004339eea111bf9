package evolve

import (
	"sync"

	"github.com/evolune/funsearch-go/pkg/core"
)

// Store is the authoritative, append-only collection of every validated
// recipe across all islands, in registration order. It is constructed once
// per run and injected wherever it is read, so parallel runs never share
// state. Registrations arrive from concurrently running island steps, hence
// the mutex.
type Store struct {
	mu      sync.RWMutex
	recipes []*core.Recipe
}

// NewStore creates an empty population store.
func NewStore() *Store {
	return &Store{}
}

// Append registers a validated recipe.
func (s *Store) Append(r *core.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, r)
}

// Len returns the total number of registered recipes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

// ByIsland returns the island's recipes in registration order.
func (s *Store) ByIsland(islandID int) []*core.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Recipe
	for _, r := range s.recipes {
		if r.IslandID == islandID {
			out = append(out, r)
		}
	}
	return out
}

// All returns every registered recipe in registration order.
func (s *Store) All() []*core.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}
