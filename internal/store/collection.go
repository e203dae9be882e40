// Package store holds the generic keyed collections every entity type lives in.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Record is implemented by every entity kept in a Collection. Touched returns a
// copy of the record with its updatedAt set to at.
type Record[T any] interface {
	Key() string
	Touched(at time.Time) T
}

// Collection is an insertion-ordered set of records keyed by id.
type Collection[T Record[T]] struct {
	mu       sync.RWMutex
	name     string
	clock    shared.Clock
	items    []T
	index    map[string]int
	revision uint64
}

// NewCollection builds an empty collection. name is used in error messages.
func NewCollection[T Record[T]](name string, clock shared.Clock) *Collection[T] {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Collection[T]{name: name, clock: clock, index: make(map[string]int)}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// List returns a copy of every record in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get resolves id. Weak references always go through here.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.name, id, shared.ErrNotFound)
	}
	return c.items[pos], nil
}

// Add appends item. It fails when the id is empty or already present.
func (c *Collection[T]) Add(item T) error {
	id := item.Key()
	if id == "" {
		return fmt.Errorf("%s: empty id: %w", c.name, shared.ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[id]; ok {
		return fmt.Errorf("%s %q: %w", c.name, id, shared.ErrDuplicateID)
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, item)
	c.revision++
	return nil
}

// Update applies patch to the record with id and refreshes its updatedAt.
// The id itself cannot be changed by patch.
func (c *Collection[T]) Update(id string, patch func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.name, id, shared.ErrNotFound)
	}
	item := c.items[pos]
	if patch != nil {
		patch(&item)
	}
	if item.Key() != id {
		var zero T
		return zero, fmt.Errorf("%s %q: id is immutable: %w", c.name, id, shared.ErrValidation)
	}
	item = item.Touched(c.clock.Now())
	c.items[pos] = item
	c.revision++
	return item, nil
}

// Remove deletes the record with id. Records that reference it are untouched.
func (c *Collection[T]) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", c.name, id, shared.ErrNotFound)
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].Key()] = i
	}
	c.revision++
	return nil
}

// Revision increases on every successful mutation.
func (c *Collection[T]) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}
