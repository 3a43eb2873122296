package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service stores JSON-encodable values under string keys.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// LoadOrStale calls load and caches its result for ttl. When load fails, the last
// cached value is returned with stale set. Cache errors never fail a successful load.
func LoadOrStale[T any](ctx context.Context, c Service, key string, ttl time.Duration, load func(context.Context) (T, error)) (v T, stale bool, err error) {
	v, err = load(ctx)
	if err == nil {
		_ = c.Set(ctx, key, v, ttl)
		return v, false, nil
	}

	var cached T
	if getErr := c.Get(ctx, key, &cached); getErr != nil {
		return v, false, err
	}
	return cached, true, nil
}

// Key joins parts with ':'.
func Key(prefix string, parts ...interface{}) string {
	key := prefix
	for _, p := range parts {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}

func encode(value interface{}) ([]byte, error) {
	if s, ok := value.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(value)
}

func decode(raw []byte, dest interface{}) error {
	if s, ok := dest.(*string); ok {
		*s = string(raw)
		return nil
	}
	return json.Unmarshal(raw, dest)
}
