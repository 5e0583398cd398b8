// Package state keeps the in-memory collections the agenda and statistics
// are computed from, and folds storage change events into them by id.
package state

import (
	"slices"
	"sync"

	"github.com/starford/caseificio/internal/models"
)

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	CheeseTypes []models.CheeseType `json:"cheese_types"`
	Productions []models.Production `json:"productions"`
	Activities  []models.Activity   `json:"activities"`
}

// collection is an insertion-ordered list with an id index.
type collection[T any] struct {
	items []T
	pos   map[string]int
	id    func(T) string
	clone func(T) T
}

func newCollection[T any](id func(T) string, clone func(T) T) *collection[T] {
	return &collection[T]{pos: make(map[string]int), id: id, clone: clone}
}

func (c *collection[T]) reset(items []T) {
	c.items = c.items[:0]
	clear(c.pos)
	for _, it := range items {
		c.upsert(it)
	}
}

func (c *collection[T]) has(id string) bool {
	_, ok := c.pos[id]
	return ok
}

func (c *collection[T]) get(id string) (T, bool) {
	i, ok := c.pos[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(c.items[i]), true
}

func (c *collection[T]) upsert(it T) {
	it = c.clone(it)
	if i, ok := c.pos[c.id(it)]; ok {
		c.items[i] = it
		return
	}
	c.pos[c.id(it)] = len(c.items)
	c.items = append(c.items, it)
}

func (c *collection[T]) remove(id string) bool {
	i, ok := c.pos[id]
	if !ok {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.pos, id)
	for j := i; j < len(c.items); j++ {
		c.pos[c.id(c.items[j])] = j
	}
	return true
}

func (c *collection[T]) list() []T {
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = c.clone(it)
	}
	return out
}

// apply folds one event into the collection. INSERT of a known id and
// DELETE of an unknown id are no-ops; UPDATE upserts.
func (c *collection[T]) apply(t models.EventType, id string, rec *T) bool {
	switch t {
	case models.EventInsert:
		if rec == nil || c.has(id) {
			return false
		}
		c.upsert(*rec)
		return true
	case models.EventUpdate:
		if rec == nil {
			return false
		}
		c.upsert(*rec)
		return true
	case models.EventDelete:
		return c.remove(id)
	}
	return false
}

// Store is safe for concurrent use. Readers always receive copies.
type Store struct {
	mu          sync.RWMutex
	cheeseTypes *collection[models.CheeseType]
	productions *collection[models.Production]
	activities  *collection[models.Activity]
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		cheeseTypes: newCollection(func(c models.CheeseType) string { return c.ID }, models.CheeseType.Clone),
		productions: newCollection(func(p models.Production) string { return p.ID }, models.Production.Clone),
		activities:  newCollection(func(a models.Activity) string { return a.ID }, models.Activity.Clone),
	}
}

// Load replaces every collection with the given records.
func (s *Store) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cheeseTypes.reset(snap.CheeseTypes)
	s.productions.reset(snap.Productions)
	s.activities.reset(snap.Activities)
}

// Apply folds a change event into the store and reports whether anything
// changed. Applying the same event twice leaves the store as applying it
// once, so optimistic local updates and their storage echo can both arrive.
func (s *Store) Apply(ev models.ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Table {
	case models.TableCheeseTypes:
		return s.cheeseTypes.apply(ev.Type, ev.ID, ev.CheeseType)
	case models.TableProductions:
		return s.productions.apply(ev.Type, ev.ID, ev.Production)
	case models.TableActivities:
		return s.activities.apply(ev.Type, ev.ID, ev.Activity)
	}
	return false
}

// Snapshot returns a copy of every collection in insertion order.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		CheeseTypes: s.cheeseTypes.list(),
		Productions: s.productions.list(),
		Activities:  s.activities.list(),
	}
}

func (s *Store) CheeseTypes() []models.CheeseType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cheeseTypes.list()
}

func (s *Store) Productions() []models.Production {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productions.list()
}

func (s *Store) Activities() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activities.list()
}

func (s *Store) CheeseType(id string) (models.CheeseType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cheeseTypes.get(id)
}

func (s *Store) Production(id string) (models.Production, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productions.get(id)
}

func (s *Store) Activity(id string) (models.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activities.get(id)
}
