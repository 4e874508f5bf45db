// Package di wires configuration, storage, caches and the HTTP surface
// into one object graph. It manages singleton instances of the cached
// access layers and exposes the assembled handler.
package di

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/cache"
	"github.com/goliatone/go-personal-budget/internal/cacheinfra"
	"github.com/goliatone/go-personal-budget/internal/config"
	"github.com/goliatone/go-personal-budget/internal/server"
	"github.com/goliatone/go-personal-budget/internal/storage/bunstore"
	"github.com/goliatone/go-personal-budget/internal/storage/procstore"
	"github.com/goliatone/go-personal-budget/pkg/auth"
	"github.com/goliatone/go-personal-budget/storecache"
)

// Container holds the wired application components.
type Container struct {
	cfg *config.Config
	log *zap.Logger

	db         *bun.DB
	users      *bunstore.UsersStore
	items      *storecache.Items
	operations *storecache.Operations
	userCache  *cacheinfra.UserCache
	tokens     *auth.Tokens
	handler    http.Handler
}

// NewContainer opens the database and builds the full object graph from
// cfg. The caller owns the returned container and must Close it.
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL.Std(),
	})
	if err != nil {
		return nil, err
	}

	userCache, err := cacheinfra.NewUserCache(cacheinfra.Config{
		Capacity:           cfg.Cache.Users.Capacity,
		NumShards:          cfg.Cache.Users.NumShards,
		TTL:                cfg.Cache.Users.TTL.Std(),
		EvictionPercentage: cfg.Cache.Users.EvictionPercentage,
	})
	if err != nil {
		return nil, err
	}

	db, err := bunstore.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}

	var (
		itemsStore      storecache.ItemsStore
		operationsStore storecache.OperationsStore
	)
	if cfg.Storage.StoredProcs {
		itemsStore = procstore.NewItemsStore(db.DB)
		operationsStore = procstore.NewOperationsStore(db.DB)
	} else {
		itemsStore = bunstore.NewItemsStore(db)
		operationsStore = bunstore.NewOperationsStore(db)
	}

	items := storecache.NewItems(itemsStore, cache.NewStore[budget.Item](cache.Config{
		MaxWeight:     cfg.Cache.ItemsMaxWeight,
		CollectionTTL: cfg.Cache.CollectionTTL.Std(),
	}))
	operations := storecache.NewOperations(operationsStore, items, cache.NewStore[budget.Operation](cache.Config{
		MaxWeight:     cfg.Cache.OperationsMaxWeight,
		CollectionTTL: cfg.Cache.CollectionTTL.Std(),
	}))

	users := bunstore.NewUsersStore(db)

	authn := server.NewAuthenticator(tokens, users, userCache, log)
	handler := server.NewRouter(
		server.NewItemsHandler(items, log),
		server.NewOperationsHandler(operations, log),
		server.NewIdentityHandler(users, tokens, log),
		authn,
		log,
	)

	return &Container{
		cfg:        cfg,
		log:        log,
		db:         db,
		users:      users,
		items:      items,
		operations: operations,
		userCache:  userCache,
		tokens:     tokens,
		handler:    handler,
	}, nil
}

// Bootstrap prepares the database for serving: it creates missing tables
// (unless the stored-function flavor is active, where provisioning is
// external) and seeds the configured admin account.
func (c *Container) Bootstrap(ctx context.Context) error {
	if !c.cfg.Storage.StoredProcs {
		if err := bunstore.EnsureSchema(ctx, c.db); err != nil {
			return err
		}
	}

	if c.cfg.Auth.AdminEmail != "" && c.cfg.Auth.AdminPassword != "" {
		hash, err := auth.HashPassword(c.cfg.Auth.AdminPassword)
		if err != nil {
			return err
		}
		if err := c.users.SeedAdmin(ctx, uuid.NewString(), c.cfg.Auth.AdminEmail, hash); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the assembled HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Items returns the cached item access layer.
func (c *Container) Items() *storecache.Items {
	return c.items
}

// Operations returns the cached operation access layer.
func (c *Container) Operations() *storecache.Operations {
	return c.operations
}

// Users returns the account store.
func (c *Container) Users() *bunstore.UsersStore {
	return c.users
}

// Tokens returns the token manager.
func (c *Container) Tokens() *auth.Tokens {
	return c.tokens
}

// Close releases the database connection.
func (c *Container) Close() error {
	return c.db.Close()
}
