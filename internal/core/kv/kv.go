// Package kv defines a small persistent key-value store with optional
// expiry. The development server keeps revoked tokens in it.
package kv

import (
	"context"
	"time"
)

// KV is the interface for a persistent key-value store.
// Keys are strings, values are JSON-serializable.
// Get on a missing or expired key returns an error wrapping sql.ErrNoRows.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	SweepExpired(ctx context.Context) error
}
