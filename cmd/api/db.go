// cmd/api/db.go
// This file opens the storage backend selected by the configuration.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.

	"github.com/aoideee/lab5-books/internal/data"
	"github.com/aoideee/lab5-books/internal/data/memory"
	"github.com/aoideee/lab5-books/internal/data/postgres"
)

// pingTimeout bounds the connectivity check made at startup.
const pingTimeout = 5 * time.Second

// openStore builds the book store named by settings.Store. The returned close
// function releases the connection pool, if there is one.
func openStore(settings serverConfig, logger *slog.Logger) (data.BookStore, func(), error) {
	if settings.Store == "memory" {
		return memory.NewStore(), func() {}, nil
	}

	options := []postgres.Option{
		postgres.WithTableName(settings.DB.Table),
		postgres.WithQueryTimeout(settings.DB.QueryTimeout),
		postgres.WithLogger(logger.With("component", "postgres")),
	}

	switch settings.DB.Driver {
	case "pgx":
		pool, err := openPGXPool(settings)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewBookStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case "sqlx":
		db, err := openSQLX(settings)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewBookStoreFromSQLX(db, options...)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	case "pq":
		db, err := openDB(settings)
		if err != nil {
			return nil, nil, err
		}
		store, err := postgres.NewBookStoreFromSQLDB(db, options...)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", settings.DB.Driver)
	}
}

// openPGXPool creates a pgx connection pool and pings the database.
func openPGXPool(settings serverConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(settings.DB.DSN)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(settings.DB.MaxOpenConns)
	poolConfig.MaxConnIdleTime = settings.DB.MaxIdleTime
	poolConfig.ConnConfig.ConnectTimeout = pingTimeout

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// openDB opens a lib/pq connection pool using the DSN stored in settings,
// then pings the database to confirm it is reachable.
func openDB(settings serverConfig) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", settings.DB.DSN)
	if err != nil {
		return nil, err
	}
	configurePool(db, settings)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// openSQLX is openDB for sqlx.
func openSQLX(settings serverConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", settings.DB.DSN)
	if err != nil {
		return nil, err
	}
	configurePool(db.DB, settings)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func configurePool(db *sql.DB, settings serverConfig) {
	db.SetMaxOpenConns(settings.DB.MaxOpenConns)
	db.SetMaxIdleConns(settings.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(settings.DB.MaxIdleTime)
}
