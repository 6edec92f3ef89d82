// Package cache stores reconstruction results keyed by image content.
//
// Solving is quadratic in the stripe count, so the pipeline caches two
// artifacts: the solution for an (image, options) pair and the encoded
// output image for a solution. Keys come from a [Keyer]; values are opaque
// bytes with an optional TTL.
//
// Backends:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for the HTTP server when several instances share results
//   - [MemoryCache] for a single server process
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs for pipeline artifacts.
const (
	TTLSolution = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
