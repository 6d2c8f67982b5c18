// Package cache stores recent emotion analyses so repeated frames skip the model.
// Every backend is best effort: failures are logged and treated as misses.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/krau/moodshop/config"
	"github.com/krau/moodshop/emotion"
)

const keyPrefix = "get_emotion:"

type Cache interface {
	Get(ctx context.Context, key string) (*emotion.Analysis, bool)
	Set(ctx context.Context, key string, a emotion.Analysis)
	Name() string
}

// New builds the configured backend. An unreachable Redis degrades to Nop.
func New(ctx context.Context, cfg config.CacheConfig) Cache {
	ttl := time.Duration(cfg.TTL) * time.Second
	switch cfg.Backend {
	case "redis":
		r, err := NewRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, ttl)
		if err != nil {
			slog.Warn("Redis not available, caching disabled", slog.String("error", err.Error()))
			return Nop{}
		}
		slog.Info("Redis cache available", slog.String("addr", cfg.RedisAddr))
		return r
	case "memory":
		return NewMemory(ttl)
	default:
		return Nop{}
	}
}

type Nop struct{}

func (Nop) Get(context.Context, string) (*emotion.Analysis, bool) { return nil, false }
func (Nop) Set(context.Context, string, emotion.Analysis)         {}
func (Nop) Name() string                                          { return "none" }

type Memory struct {
	c *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (*emotion.Analysis, bool) {
	v, ok := m.c.Get(keyPrefix + key)
	if !ok {
		return nil, false
	}
	a := v.(emotion.Analysis)
	return &a, true
}

func (m *Memory) Set(_ context.Context, key string, a emotion.Analysis) {
	m.c.SetDefault(keyPrefix+key, a)
}

func (m *Memory) Name() string { return "memory" }

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects and pings the server once.
func NewRedis(ctx context.Context, opts *redis.Options, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (*emotion.Analysis, bool) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("Redis get failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	var a emotion.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		slog.Debug("Cached analysis is corrupt", slog.String("error", err.Error()))
		return nil, false
	}
	return &a, true
}

func (r *Redis) Set(ctx context.Context, key string, a emotion.Analysis) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		slog.Debug("Redis set failed", slog.String("error", err.Error()))
	}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) Close() error {
	return r.client.Close()
}
