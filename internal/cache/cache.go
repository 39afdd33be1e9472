// Package cache defines the key/value store that memoizes serialized analyses.
package cache

import (
	"context"
	"errors"
	"time"
)

// Defaults for the analysis cache.
const (
	DefaultPrefix = "scrape-url"
	DefaultTTL    = 24 * time.Hour
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store holds opaque byte values with a per-entry expiry.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Key builds the cache key for a URL. The URL is used verbatim, so URLs that
// differ only in case or a trailing slash get distinct entries.
func Key(prefix, rawURL string) string {
	return prefix + "-" + rawURL
}
