// Package bunstore implements the durable entity stores on top of the bun
// ORM. It is the default persistence flavor; see procstore for the
// stored-procedure variant.
package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database selected by driver and wraps it in a bun
// handle with the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		err   error
		db    *bun.DB
	)

	switch driver {
	case DriverSQLite:
		sqldb, err = sql.Open("sqlite3", dsn)
		if err == nil {
			db = bun.NewDB(sqldb, sqlitedialect.New())
		}
	case DriverPostgres:
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			db = bun.NewDB(sqldb, pgdialect.New())
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the tables the service needs when they do not
// exist yet. Schema evolution beyond that is out of scope here.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*itemModel)(nil),
		(*operationModel)(nil),
		(*userModel)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}
