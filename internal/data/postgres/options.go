package postgres

import "time"

// Logger interface for SQL query logging, warnings, and error reporting.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option defines a functional option for configuring BookStore.
type Option func(*BookStore) error

// WithTableName sets the table name for the BookStore.
func WithTableName(tableName string) Option {
	return func(s *BookStore) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the BookStore.
//
// Debug level: SQL statements with execution timing
// Warn level: failures to release result sets
// Error level: failures that make an operation fail.
func WithLogger(logger Logger) Option {
	return func(s *BookStore) error {
		s.logger = logger
		return nil
	}
}

// WithQueryTimeout bounds every statement the store issues.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *BookStore) error {
		if timeout <= 0 {
			return ErrInvalidQueryTimeout
		}

		s.queryTimeout = timeout

		return nil
	}
}
