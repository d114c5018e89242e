package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool runs book store statements on a pgx connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool wraps pool.
func NewPool(pool *pgxpool.Pool) *Pool {
	return &Pool{pool: pool}
}

func (p *Pool) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxCursor{rows: rows}, nil
}

func (p *Pool) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return commandTag(tag), nil
}

// Ping acquires a pooled connection and pings the server with it.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// pgxCursor adapts pgx.Rows, whose Close has no error, to DBRows.
type pgxCursor struct {
	rows pgx.Rows
}

func (c pgxCursor) Next() bool             { return c.rows.Next() }
func (c pgxCursor) Scan(dest ...any) error { return c.rows.Scan(dest...) }
func (c pgxCursor) Err() error             { return c.rows.Err() }

func (c pgxCursor) Close() error {
	c.rows.Close()
	return c.rows.Err()
}

// commandTag reads the affected row count from the server's command tag.
type commandTag pgconn.CommandTag

func (t commandTag) RowsAffected() (int64, error) {
	return pgconn.CommandTag(t).RowsAffected(), nil
}
