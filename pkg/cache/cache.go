// Package cache stores layout results keyed by scene content.
//
// A layout is a pure function of the scene objects, the engine
// configuration and the layout options, so its committed result can be
// replayed instead of recomputed. The pipeline runner uses this for batch
// layouts and the HTTP API for repeated renders of unchanged scenes.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the API server
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with expiry.
type Cache interface {
	// Get returns the cached data and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values.
const (
	// TTLLayout applies to cached layout results.
	TTLLayout = 7 * 24 * time.Hour

	// TTLRender applies to rendered artifacts.
	TTLRender = 7 * 24 * time.Hour
)
