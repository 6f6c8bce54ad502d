// Package store provides the durable key-value layer the session and cart
// managers persist through.
package store

import (
	"context"
)

// Fixed record keys. Each logical entity owns exactly one record.
const (
	KeySession = "user"
	KeyCart    = "cart"
)

// Store is the minimal lifecycle interface all backends implement.
type Store interface {
	// Ping verifies the backend is usable.
	Ping(ctx context.Context) error
	// Close releases any resources held by the store.
	Close() error
}

// KV is a string key-value store.
type KV interface {
	// Get returns the value for key, or an error matching ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// KVStore is a KV with a lifecycle.
type KVStore interface {
	Store
	KV
}
