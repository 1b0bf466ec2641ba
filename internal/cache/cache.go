package cache

import (
	"context"
	"time"
)

// Store is a best-effort TTL key/value store. Values are opaque bytes so the
// in-memory manager and the redis backend share one contract; callers encode
// what they cache. Failures never surface as errors: a failed read is a
// miss, a failed write is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	// DeletePrefix evicts every key starting with prefix. Coarse-grained by
	// design: selective list-entry invalidation is not supported.
	DeletePrefix(ctx context.Context, prefix string)
}
