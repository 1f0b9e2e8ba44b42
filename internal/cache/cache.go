// Package cache provides the key/value cache used for read-heavy listings.
// Entries expire after their TTL; there is no invalidation protocol and
// callers must tolerate stale values.
package cache

import (
	"context"
	"fmt"
	"time"
)

type Cache interface {
	// Get returns found=false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Open connects the backend named by driver. url is ignored for "memory".
func Open(ctx context.Context, driver, url string) (Cache, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(ctx, url)
	case "valkey":
		return NewValkey(ctx, url)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", driver)
	}
}
