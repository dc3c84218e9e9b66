// Package cache memoizes per-document extraction results in Redis. The
// cache is optional: when Redis misbehaves a circuit breaker opens and
// every lookup becomes a miss until it recovers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/resilience"
)

const keyPrefix = "keyphrase:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// ResultCache stores values of type T as JSON.
type ResultCache[T any] struct {
	store   Store
	ttl     time.Duration
	isMiss  func(error) bool
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps store. isMiss recognizes the store's key-not-found error;
// nil uses the Redis one.
func New[T any](store Store, isMiss func(error) bool, redisCfg config.RedisConfig, cacheCfg config.CacheConfig, m *metrics.Metrics) *ResultCache[T] {
	if isMiss == nil {
		isMiss = pkgredis.IsNilError
	}
	return &ResultCache[T]{
		store:  store,
		ttl:    redisCfg.CacheTTL,
		isMiss: isMiss,
		breaker: resilience.NewCircuitBreaker("result-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: cacheCfg.FailureThreshold,
			ResetTimeout:     cacheCfg.ResetTimeout,
			OnStateChange: func(name string, to resilience.State) {
				m.SetBreakerState(name, int(to))
			},
		}),
		metrics: m,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Key derives a cache key from a namespace, typically the method and its
// parameters, and the JSON form of payload.
func Key(namespace string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding cache key payload: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write(data)
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16]), nil
}

func (c *ResultCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	var data string
	found := false
	err := c.breaker.Execute(func() error {
		v, err := c.store.Get(ctx, key)
		if err != nil {
			if c.isMiss(err) {
				return nil
			}
			return err
		}
		data, found = v, true
		return nil
	})
	if err != nil {
		c.logger.Debug("cache get failed", "key", key, "error", err)
	}
	if !found {
		c.miss()
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		c.logger.Error("cache unmarshal failed, dropping entry", "key", key, "error", err)
		c.forget(ctx, key)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.CacheHit()
	return &v, true
}

// forget drops one entry, typically one written by an older version of T.
func (c *ResultCache[T]) forget(ctx context.Context, key string) {
	if err := c.breaker.Execute(func() error {
		return c.store.Del(ctx, key)
	}); err != nil {
		c.logger.Debug("cache delete failed", "key", key, "error", err)
	}
}

func (c *ResultCache[T]) Set(ctx context.Context, key string, v *T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	}); err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached value for key or computes, stores and
// returns it. Concurrent computations of one key are collapsed. The bool
// reports a cache hit.
func (c *ResultCache[T]) GetOrCompute(ctx context.Context, key string, compute func() (*T, error)) (*T, bool, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*T), false, nil
}

// Invalidate drops every cached result, for instance after a corpus file
// was rebuilt.
func (c *ResultCache[T]) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *ResultCache[T]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache[T]) miss() {
	c.misses.Add(1)
	c.metrics.CacheMiss()
}
