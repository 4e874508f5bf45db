package cache

import "time"

// Defaults mirror the limits the service has always run with: each cache
// instance holds at most 100 weight units, and collection entries live for
// one second.
const (
	DefaultMaxWeight     = 100
	DefaultCollectionTTL = time.Second
)

// Config exposes the cache knobs consumers can tune per entity kind.
type Config struct {
	// MaxWeight caps the combined weight of all entries in one Store:
	// 1 per cached entity plus len(items) per cached collection.
	MaxWeight int

	// CollectionTTL is the absolute time-to-live stamped on collection
	// entries at insertion. Entity entries never expire on their own.
	CollectionTTL time.Duration
}

// DefaultConfig returns a Config populated with the default limits.
func DefaultConfig() Config {
	return Config{
		MaxWeight:     DefaultMaxWeight,
		CollectionTTL: DefaultCollectionTTL,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.MaxWeight <= 0 {
		return &ConfigError{Field: "MaxWeight", Message: "must be greater than 0"}
	}
	if c.CollectionTTL <= 0 {
		return &ConfigError{Field: "CollectionTTL", Message: "must be greater than 0"}
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
