package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/andy/billbook/internal/store"
	"github.com/rs/zerolog"
)

// collection is an in-memory ordered list of records that writes the whole list
// through to one store key after every mutation. If the write fails the mutation
// is rolled back, so memory and store never disagree.
type collection[T any] struct {
	mu    sync.Mutex
	name  string
	key   string
	store store.Store
	log   zerolog.Logger
	items []T

	idOf  func(*T) string
	clone func(*T) *T
}

func loadCollection[T any](
	ctx context.Context,
	st store.Store,
	name, key string,
	log zerolog.Logger,
	idOf func(*T) string,
	clone func(*T) *T,
) (*collection[T], error) {
	c := &collection[T]{
		name:  name,
		key:   key,
		store: st,
		log:   log,
		items: make([]T, 0),
		idOf:  idOf,
		clone: clone,
	}

	data, ok, err := st.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Error().Err(err).Str("key", key).Msg("stored collection is not valid JSON")
		return nil, fmt.Errorf("%w: %s (key %q): %v", ErrCorruptData, name, key, err)
	}
	if items != nil {
		c.items = items
	}

	log.Debug().Str("collection", name).Int("count", len(c.items)).Msg("loaded")
	return c, nil
}

// persistLocked writes the full collection. Caller holds c.mu.
func (c *collection[T]) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", c.name, err)
	}
	c.log.Debug().Str("collection", c.name).Int("count", len(c.items)).Msg("persisted")
	return nil
}

func (c *collection[T]) indexLocked(id string) int {
	for i := range c.items {
		if c.idOf(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) list() []*T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*T, len(c.items))
	for i := range c.items {
		out[i] = c.clone(&c.items[i])
	}
	return out
}

func (c *collection[T]) get(id string) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
	}
	return c.clone(&c.items[idx]), nil
}

func (c *collection[T]) add(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, *c.clone(item))
	if err := c.persistLocked(ctx); err != nil {
		c.items = c.items[:len(c.items)-1]
		return err
	}
	return nil
}

// update applies mutate to the record with id. If mutate fails or the write fails
// the record is restored.
func (c *collection[T]) update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
	}

	prev := c.clone(&c.items[idx])
	if err := mutate(&c.items[idx]); err != nil {
		c.items[idx] = *prev
		return nil, err
	}
	if err := c.persistLocked(ctx); err != nil {
		c.items[idx] = *prev
		return nil, err
	}
	return c.clone(&c.items[idx]), nil
}

func (c *collection[T]) remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
	}

	prev := c.items
	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)

	c.items = next
	if err := c.persistLocked(ctx); err != nil {
		c.items = prev
		return err
	}
	return nil
}

// clear empties the collection and deletes its key
func (c *collection[T]) clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.name, err)
	}
	c.items = make([]T, 0)
	return nil
}

func (c *collection[T]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
