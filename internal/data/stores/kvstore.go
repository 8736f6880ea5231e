package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hay-kot/taskdeck/internal/core/kv"
	"github.com/hay-kot/taskdeck/internal/data/db"
)

// KVStore implements kv.KV using SQLite.
type KVStore struct {
	db *db.DB
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db}
}

// Get retrieves and deserializes a value by key. Expired entries are
// deleted on read and reported as sql.ErrNoRows.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	row, err := s.live(ctx, key)
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if err := json.Unmarshal(row.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set stores a value with no expiry.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	return s.set(ctx, key, value, sql.NullInt64{})
}

// SetTTL stores a value that expires after ttl.
func (s *KVStore) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.set(ctx, key, value, sql.NullInt64{Int64: time.Now().Add(ttl).UnixNano(), Valid: true})
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Has reports whether an unexpired key exists.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.live(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case IsNotFoundError(err):
		return false, nil
	default:
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}
}

// SweepExpired deletes all entries whose TTL has passed.
func (s *KVStore) SweepExpired(ctx context.Context) error {
	now := sql.NullInt64{Int64: time.Now().UnixNano(), Valid: true}
	if err := s.db.Queries().KVSweepExpired(ctx, now); err != nil {
		return fmt.Errorf("kv sweep expired: %w", err)
	}
	return nil
}

// live loads key, lazily deleting it when expired.
func (s *KVStore) live(ctx context.Context, key string) (db.KvStore, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if err != nil {
		return db.KvStore{}, err
	}
	if row.ExpiresAt.Valid && row.ExpiresAt.Int64 < time.Now().UnixNano() {
		_ = s.db.Queries().KVDelete(ctx, key)
		return db.KvStore{}, sql.ErrNoRows
	}
	return row, nil
}

func (s *KVStore) set(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	now := time.Now().UnixNano()
	if err := s.db.Queries().KVSet(ctx, db.KVSetParams{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}
