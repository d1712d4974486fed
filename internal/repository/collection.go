package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"studyquest/internal/store"
)

// collection maps one record store collection onto a Go type. Writes take
// the collection mutex across load, mutate and save so that two writers to
// the same collection cannot overwrite each other's changes.
type collection[T any] struct {
	mu    sync.Mutex
	store store.RecordStore
	name  string
	idOf  func(*T) string
}

func newCollection[T any](s store.RecordStore, name string, idOf func(*T) string) *collection[T] {
	return &collection[T]{store: s, name: name, idOf: idOf}
}

func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	records, err := c.store.LoadAll(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.name, err)
	}

	items := make([]T, 0, len(records))
	for _, r := range records {
		var item T
		if err := json.Unmarshal(r.Data, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %s: %w", c.name, r.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// find returns nil when no item has the given id
func (c *collection[T]) find(ctx context.Context, id string) (*T, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (c *collection[T]) filter(ctx context.Context, keep func(*T) bool) ([]T, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// put replaces the item with the same id or appends it
func (c *collection[T]) put(ctx context.Context, items ...*T) error {
	return c.update(ctx, func(current []T) ([]T, error) {
		for _, item := range items {
			id := c.idOf(item)
			replaced := false
			for i := range current {
				if c.idOf(&current[i]) == id {
					current[i] = *item
					replaced = true
					break
				}
			}
			if !replaced {
				current = append(current, *item)
			}
		}
		return current, nil
	})
}

func (c *collection[T]) remove(ctx context.Context, id string) error {
	return c.update(ctx, func(current []T) ([]T, error) {
		out := current[:0]
		for i := range current {
			if c.idOf(&current[i]) != id {
				out = append(out, current[i])
			}
		}
		return out, nil
	})
}

// replaceAll overwrites the collection with items
func (c *collection[T]) replaceAll(ctx context.Context, items []T) error {
	return c.update(ctx, func([]T) ([]T, error) {
		return items, nil
	})
}

func (c *collection[T]) update(ctx context.Context, mutate func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.all(ctx)
	if err != nil {
		return err
	}
	next, err := mutate(current)
	if err != nil {
		return err
	}

	records := make([]store.Record, 0, len(next))
	for i := range next {
		data, err := json.Marshal(&next[i])
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", c.name, err)
		}
		records = append(records, store.Record{ID: c.idOf(&next[i]), Data: data})
	}

	if err := c.store.SaveAll(ctx, c.name, records); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.name, err)
	}
	return nil
}
