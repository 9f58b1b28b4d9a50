// Package cache is a key/value store with per-key expiry.
//
// Every state record the login flow keeps (challenges, attempt counters,
// lockouts) lives behind Store. The Redis implementation is shared by all
// service instances, so counters stay correct under horizontal scaling.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache: key not found")

	// ErrUnavailable wraps connectivity and protocol failures of the backend.
	ErrUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidTTL is returned when a write is attempted without a positive TTL.
	ErrInvalidTTL = errors.New("cache: ttl must be positive")
)

// Store is the contract the login outbound adapters depend on.
type Store interface {
	// Get returns the raw value or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL writes value and replaces any previous value and expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteIfValue removes key only while it still holds value, as one
	// atomic step. It reports whether this call removed it.
	DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error)

	// IncrementWithTTL atomically increments the integer at key and returns
	// the new value. When the increment creates the key, ttl becomes its
	// expiry; later increments leave the expiry untouched.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL returns the remaining lifetime of key, zero when absent.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
