package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// sqlHandle is what *sql.DB and *sqlx.DB have in common.
type sqlHandle interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// SQL runs book store statements on a database/sql handle, with lib/pq
// registered as the driver by the caller.
type SQL struct {
	db sqlHandle
}

// NewSQL wraps a *sql.DB.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// NewSQLX wraps a *sqlx.DB. Statements go through its embedded *sql.DB
// methods; the store scans rows itself and needs none of sqlx's mapping.
func NewSQLX(db *sqlx.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SQL) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
