// Package adapters lets the book store issue the same goqu-built statements
// through pgx, database/sql or sqlx. Pool wraps a pgxpool.Pool; SQL wraps a
// *sql.DB or a *sqlx.DB, whose embedded *sql.DB already does the work.
package adapters
