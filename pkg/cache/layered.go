package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through an in-memory L1 to a shared L2.
type LayeredCache struct {
	l1    *MemoryCache
	l2    Service
	l1TTL time.Duration
}

// NewLayeredCache puts l1 in front of l2. Entries promoted from l2 live in l1 for l1TTL.
func NewLayeredCache(l1 *MemoryCache, l2 Service, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

// Set writes through to both layers. L1 is written even when L2 fails.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	l2Err := lc.l2.Set(ctx, key, value, expiration)
	if err := lc.l1.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	return l2Err
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	l1Err := lc.l1.Get(ctx, key, dest)
	if l1Err == nil {
		return nil
	}
	if err := lc.l2.Get(ctx, key, dest); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return err
		}
		// L2 down: answer from L1 alone
		return l1Err
	}
	_ = lc.l1.Set(ctx, key, dest, lc.l1TTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}
