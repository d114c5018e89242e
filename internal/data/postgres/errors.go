package postgres

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a constructor is given a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned by WithTableName for an empty name.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrInvalidQueryTimeout is returned by WithQueryTimeout for a non-positive duration.
	ErrInvalidQueryTimeout = errors.New("query timeout must be positive")

	// ErrBuildingQueryFailed is returned when goqu fails to render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingBooksFailed is returned when a select statement fails.
	ErrQueryingBooksFailed = errors.New("querying books failed")

	// ErrScanningRowFailed is returned when a result row cannot be scanned.
	ErrScanningRowFailed = errors.New("scanning db row failed")

	// ErrSavingBookFailed is returned when an insert or upsert fails.
	ErrSavingBookFailed = errors.New("saving book failed")

	// ErrSyncingSequenceFailed is returned when the id sequence cannot be moved
	// past a book saved with an explicit id. The book itself has been saved.
	ErrSyncingSequenceFailed = errors.New("syncing id sequence failed")

	// ErrDeletingBookFailed is returned when a delete statement fails.
	ErrDeletingBookFailed = errors.New("deleting book failed")
)
