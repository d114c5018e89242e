package adapters

import "context"

// DBAdapter is the slice of a database handle the book store needs: a
// row-returning query for selects and saves, a statement execution for
// deletes and sequence upkeep, and a ping for the healthcheck.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Ping(ctx context.Context) error
}

// DBRows is a forward-only cursor over book rows. Close must be called once
// the caller is done, even after an early stop.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports how many rows a statement touched.
type DBResult interface {
	RowsAffected() (int64, error)
}

var (
	_ DBAdapter = (*Pool)(nil)
	_ DBAdapter = (*SQL)(nil)
)
