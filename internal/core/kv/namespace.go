package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Namespace stores values of one type under "name:" prefixed keys.
type Namespace[T any] struct {
	store KV
	name  string
}

// In returns the namespace called name inside store.
func In[T any](store KV, name string) *Namespace[T] {
	return &Namespace[T]{store: store, name: name}
}

func (n *Namespace[T]) key(k string) string { return n.name + ":" + k }

// Lookup returns the value stored under k. A missing or expired key is not
// an error; ok is false instead.
func (n *Namespace[T]) Lookup(ctx context.Context, k string) (v T, ok bool, err error) {
	err = n.store.Get(ctx, n.key(k), &v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return v, false, nil
	case err != nil:
		return v, false, err
	}
	return v, true, nil
}

// Put stores v under k. A zero ttl keeps the value until it is removed.
func (n *Namespace[T]) Put(ctx context.Context, k string, v T, ttl time.Duration) error {
	if ttl <= 0 {
		return n.store.Set(ctx, n.key(k), v)
	}
	return n.store.SetTTL(ctx, n.key(k), v, ttl)
}

func (n *Namespace[T]) Remove(ctx context.Context, k string) error {
	return n.store.Delete(ctx, n.key(k))
}

func (n *Namespace[T]) Contains(ctx context.Context, k string) (bool, error) {
	return n.store.Has(ctx, n.key(k))
}
