// Package cache stores thinning results so that re-running the same image
// with the same options can skip decoding, thinning and encoding.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: shared cache in a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are derived by a [Keyer] from the SHA-256 of the input image bytes
// and every option that changes the output, so a hit is always safe to reuse.
// [ScopedKeyer] prefixes keys for multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// TTLResult is how long a thinning result stays cached.
const TTLResult = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey returns the key for a thinning result of the input with the
	// given content hash.
	ResultKey(inputHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts lists the options that change a thinning result.
type ResultKeyOpts struct {
	Strict bool   `json:"strict"`
	Format string `json:"format"`
}

// DefaultKeyer produces keys of the form "result:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}
