// Package store is the persistence boundary: named collections of records that
// are read and written wholesale. Backends only move bytes; encoding lives in
// Collection and Value.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

type RecordStore interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Collection is a JSON array of T stored under a single key.
type Collection[T any] struct {
	Store RecordStore
	Key   string
}

func (c Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	b, err := c.Store.Get(ctx, c.Key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Key, err)
	}
	out := []T{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Key, err)
	}
	return out, nil
}

func (c Collection[T]) WriteAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Key, err)
	}
	if err := c.Store.Put(ctx, c.Key, b); err != nil {
		return fmt.Errorf("write %s: %w", c.Key, err)
	}
	return nil
}

// Value is a single JSON document under a key (counters, idempotency markers).
type Value[T any] struct {
	Store RecordStore
	Key   string
}

// Read returns the zero value and false when the key is absent.
func (v Value[T]) Read(ctx context.Context) (T, bool, error) {
	var out T
	b, err := v.Store.Get(ctx, v.Key)
	if errors.Is(err, ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("read %s: %w", v.Key, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, fmt.Errorf("decode %s: %w", v.Key, err)
	}
	return out, true, nil
}

func (v Value[T]) Write(ctx context.Context, val T) error {
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", v.Key, err)
	}
	if err := v.Store.Put(ctx, v.Key, b); err != nil {
		return fmt.Errorf("write %s: %w", v.Key, err)
	}
	return nil
}
