// Package cache stores fetched topologies, overlay datasets and rendered maps.
//
// Three backends implement [Cache]:
//   - [NullCache] never stores anything
//   - [FileCache] keeps entries as JSON files, for the CLI
//   - [RedisCache] shares entries between API server replicas
//
// Keys are produced by a [Keyer] so that every backend sees the same layout:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RenderKey(cache.RenderKeyOpts{Scope: "usa", ConfigHash: h, Format: "svg"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the entry for key. hit is false when the key is absent or
	// expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
