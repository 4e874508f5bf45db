// Package cacheinfra adapts the sturdyc cache client for the hot lookups
// that sit outside the entity cache engine, currently the per-request
// user resolution in the authentication middleware.
package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-personal-budget/budget"
)

// Config holds the sturdyc knobs the user cache needs.
type Config struct {
	// Capacity is the maximum number of cached users. Must be > 0.
	Capacity int

	// NumShards determines the shard count for concurrent access.
	// Must be > 0.
	NumShards int

	// TTL is how long a resolved user stays cached before the next
	// request re-reads the account store. Role changes and deletions
	// take at most this long to be observed.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache
	// reaches capacity. Must be between 1 and 100.
	EvictionPercentage int
}

// DefaultConfig returns a Config with sensible defaults: auth lookups are
// frequent and small, and five minutes bounds how stale a role can get.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// UserCache is a read-through cache over the account store, keyed by user
// id. sturdyc deduplicates concurrent fetches for the same key, so a burst
// of requests from one user costs a single store round trip.
type UserCache struct {
	client *sturdyc.Client[budget.User]
}

// NewUserCache validates cfg and builds the sturdyc-backed cache.
func NewUserCache(cfg Config) (*UserCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[budget.User](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &UserCache{client: client}, nil
}

// GetOrFetch returns the cached user for id, falling back to fetch and
// caching the result.
func (c *UserCache) GetOrFetch(ctx context.Context, id string, fetch func(ctx context.Context) (budget.User, error)) (budget.User, error) {
	return c.client.GetOrFetch(ctx, id, fetch)
}

// Delete drops the cached user, forcing the next lookup through to the
// store.
func (c *UserCache) Delete(id string) {
	c.client.Delete(id)
}
