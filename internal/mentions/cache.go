/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package mentions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved mentions keyed by lowercase email.
type Cache interface {
	Get(ctx context.Context, email string) (string, bool, error)
	Set(ctx context.Context, email, mention string) error
}

type memEntry struct {
	mention string
	expires time.Time
}

// MemoryCache is a process-local Cache with a fixed TTL.
type MemoryCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, items: map[string]memEntry{}}
}

func (m *MemoryCache) Get(_ context.Context, email string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cacheKey(email)
	e, ok := m.items[k]
	if !ok {
		return "", false, nil
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.items, k)
		return "", false, nil
	}
	return e.mention, true, nil
}

func (m *MemoryCache) Set(_ context.Context, email, mention string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[cacheKey(email)] = memEntry{mention: mention, expires: m.now().Add(m.ttl)}
	return nil
}

// RedisCache shares resolved mentions between processes.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to the server at url (redis://...) and pings it.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("mentions: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("mentions: redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb, ttl), nil
}

func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "linear-pulse:mention:"}
}

func (r *RedisCache) Get(ctx context.Context, email string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+cacheKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisCache) Set(ctx context.Context, email, mention string) error {
	return r.rdb.Set(ctx, r.prefix+cacheKey(email), mention, r.ttl).Err()
}

func (r *RedisCache) Close() error { return r.rdb.Close() }

func cacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
