/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for generated plans.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultPlanTTL bounds how long rendered plans stay cached.
const DefaultPlanTTL = 30 * time.Minute

// Key prefixes for Redis cache
const (
	KeyPlanActivities  = "matchday:cache:activities:"  // + plan_id
	KeyPlanFingerprint = "matchday:cache:fingerprint:" // + parameter hash
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PlanTTL time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		PlanTTL:        DefaultPlanTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes a key from cache.
func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// Use SCAN to find keys (safer than KEYS for production)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// Plan caching methods

// CachedActivity is the rendered form of one scheduled activity.
type CachedActivity struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	Seq      int       `json:"seq"`
	Kind     string    `json:"kind"`
	Room     string    `json:"room"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Block    int       `json:"block,omitempty"`
	Lane     int       `json:"lane,omitempty"`
	Round    int       `json:"round,omitempty"`
	Match    int       `json:"match,omitempty"`
	Stage    int       `json:"stage,omitempty"`
	Table1   int       `json:"table1,omitempty"`
	Table2   int       `json:"table2,omitempty"`
	Team1    int       `json:"team1,omitempty"`
	Team2    int       `json:"team2,omitempty"`
	Label    string    `json:"label,omitempty"`
}

// GetActivities retrieves the cached activity list of a plan.
func (c *Cache) GetActivities(ctx context.Context, planID string) ([]CachedActivity, bool) {
	var acts []CachedActivity
	found, err := c.get(ctx, KeyPlanActivities+planID, &acts)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("plan_id", planID).Int("count", len(acts)).Msg("activity cache hit")
	return acts, true
}

// SetActivities caches the activity list of a plan.
func (c *Cache) SetActivities(ctx context.Context, planID string, acts []CachedActivity) error {
	return c.set(ctx, KeyPlanActivities+planID, acts, c.ttl())
}

// GetPlanByFingerprint returns the id of a plan generated from identical parameters.
func (c *Cache) GetPlanByFingerprint(ctx context.Context, fingerprint string) (string, bool) {
	var id string
	found, err := c.get(ctx, KeyPlanFingerprint+fingerprint, &id)
	if err != nil || !found || id == "" {
		return "", false
	}
	return id, true
}

// SetPlanFingerprint remembers which plan a parameter hash produced.
func (c *Cache) SetPlanFingerprint(ctx context.Context, fingerprint, planID string) error {
	return c.set(ctx, KeyPlanFingerprint+fingerprint, planID, c.ttl())
}

// InvalidatePlan removes every cached entry of a plan.
func (c *Cache) InvalidatePlan(ctx context.Context, planID, fingerprint string) error {
	if err := c.delete(ctx, KeyPlanActivities+planID); err != nil {
		return err
	}
	if fingerprint != "" {
		return c.delete(ctx, KeyPlanFingerprint+fingerprint)
	}
	return nil
}

// FlushAll removes all cached data (use sparingly).
func (c *Cache) FlushAll(ctx context.Context) error {
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, "matchday:cache:*")
}

func (c *Cache) ttl() time.Duration {
	if c.config.PlanTTL > 0 {
		return c.config.PlanTTL
	}
	return DefaultPlanTTL
}
