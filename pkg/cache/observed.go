package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/scrolly/pkg/observability"
)

// Observed reports hits, misses and writes of c to the registered
// [observability.CacheHooks]. The key type is the key prefix before the
// first colon ("artifact", "http").
func Observed(c Cache) Cache {
	return &observed{Cache: c}
}

type observed struct {
	Cache
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func keyType(key string) string {
	// Scoped keys carry a version prefix: "v1.2.0:artifact:<hash>".
	parts := strings.Split(key, ":")
	for _, p := range parts {
		if p == "artifact" || p == "http" {
			return p
		}
	}
	return parts[0]
}
