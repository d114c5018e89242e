// Package postgres implements data.BookStore on PostgreSQL.
//
// The store can be built from a pgxpool.Pool, a *sql.DB or a *sqlx.DB; the
// SQL is the same for all three and is built with goqu using prepared
// placeholders. The table must exist before the store is used:
//
//	CREATE TABLE book_details (
//	    id          BIGSERIAL PRIMARY KEY,
//	    name        TEXT NOT NULL,
//	    description TEXT NOT NULL DEFAULT '',
//	    publisher   TEXT NOT NULL DEFAULT '',
//	    author      TEXT NOT NULL DEFAULT ''
//	);
//
// Books saved with an explicit id bypass the id sequence; Save moves the
// sequence past the highest stored id afterwards so plain inserts never
// collide with them.
//
// Errors returned by the store are joined with one of the package sentinels,
// so callers can test for the failing step with errors.Is while the driver
// error remains reachable.
package postgres
