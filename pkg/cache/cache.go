// Package cache stores encoded lookup tables between runs.
//
// The package separates storage from key construction:
//   - [Cache] is a byte-oriented key/value store with TTL support.
//     [FileCache] backs the CLI, [RedisCache] lets several hosts share
//     tables, and [NullCache] disables caching.
//   - [Keyer] derives stable keys from kernel parameters. [ScopedKeyer] adds
//     a namespace prefix so several configurations can share one store.
//
// A cache is an optimisation only. Callers treat read errors as a miss and
// write errors as non-fatal.
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLForever stores an entry without expiry. Tables are pure functions of
// their key, so entries never go stale; a TTL only bounds disk or memory use.
const TTLForever time.Duration = 0

// Cache is a key/value store for encoded tables.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss. Expired and
	// unreadable entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// KernelKeyOpts identifies one lookup table.
type KernelKeyOpts struct {
	D33          float64 `json:"d33"`
	D44          float64 `json:"d44"`
	T            float64 `json:"t"`
	Orientations int     `json:"orientations"`

	// VerticesHash distinguishes explicit orientation sets of equal size.
	VerticesHash string `json:"vertices_hash,omitempty"`

	// TestMode tables have a single r orientation and must not collide with
	// full tables.
	TestMode bool `json:"test_mode,omitempty"`
}

// Label renders the options the way table files were traditionally named,
// with parameters rounded to two decimals. It is for display only.
func (o KernelKeyOpts) Label() string {
	s := fmt.Sprintf("D33=%.2f_D44=%.2f_t=%.2f_n=%d", o.D33, o.D44, o.T, o.Orientations)
	if o.TestMode {
		s += "_test"
	}
	return s
}

// Keyer derives cache keys.
type Keyer interface {
	// KernelKey returns the key of the lookup table described by opts.
	KernelKey(opts KernelKeyOpts) string
}

// DefaultKeyer hashes the full-precision options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// KernelKey returns "kernel:<sha256 of the options>".
func (DefaultKeyer) KernelKey(opts KernelKeyOpts) string {
	return digestJSON("kernel", opts)
}

// NullCache stores nothing; every Get misses. It backs --no-cache and the
// "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// ScopedKeyer prefixes every key of an inner keyer, so several
// configurations can share one backend without seeing each other's tables.
//
//	k := NewScopedKeyer(nil, "lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

// KernelKey returns the inner key with the prefix prepended.
func (k ScopedKeyer) KernelKey(opts KernelKeyOpts) string {
	return k.prefix + k.inner.KernelKey(opts)
}
