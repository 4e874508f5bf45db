// Package config loads the service configuration from a YAML file with
// environment variable expansion, falling back to defaults when the file
// is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written in the
// "1s" / "5m" form.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the application-wide configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// AuthConfig configures token issuance and the seeded admin account.
type AuthConfig struct {
	Secret        string   `yaml:"secret"`
	Issuer        string   `yaml:"issuer"`
	Audience      string   `yaml:"audience"`
	TokenTTL      Duration `yaml:"token_ttl"`
	AdminEmail    string   `yaml:"admin_email"`
	AdminPassword string   `yaml:"admin_password"`
}

// StorageConfig selects the persistence flavor. StoredProcs switches the
// item and operation stores to the PostgreSQL stored-function variant and
// requires the postgres driver.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	StoredProcs bool   `yaml:"stored_procs"`
}

// CacheConfig configures the per-entity cache engines and the auth user
// cache.
type CacheConfig struct {
	ItemsMaxWeight      int             `yaml:"items_max_weight"`
	OperationsMaxWeight int             `yaml:"operations_max_weight"`
	CollectionTTL       Duration        `yaml:"collection_ttl"`
	Users               UserCacheConfig `yaml:"users"`
}

// UserCacheConfig configures the sturdyc-backed user lookup cache.
type UserCacheConfig struct {
	Capacity           int      `yaml:"capacity"`
	NumShards          int      `yaml:"num_shards"`
	TTL                Duration `yaml:"ttl"`
	EvictionPercentage int      `yaml:"eviction_percentage"`
}

// Load reads the configuration file at path. Environment variables in the
// file are expanded before parsing. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(15 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Auth: AuthConfig{
			Secret:   os.Getenv("BUDGET_JWT_SECRET"),
			Issuer:   "go-personal-budget",
			Audience: "go-personal-budget-api",
			TokenTTL: Duration(30 * 24 * time.Hour),
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:budget.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			ItemsMaxWeight:      100,
			OperationsMaxWeight: 100,
			CollectionTTL:       Duration(time.Second),
			Users: UserCacheConfig{
				Capacity:           10000,
				NumShards:          64,
				TTL:                Duration(5 * time.Minute),
				EvictionPercentage: 10,
			},
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Storage.StoredProcs && c.Storage.Driver != "postgres" {
		return fmt.Errorf("stored_procs requires the postgres driver, got %q", c.Storage.Driver)
	}
	return nil
}
