package postgres

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/aoideee/lab5-books/internal/data"
	"github.com/aoideee/lab5-books/internal/data/postgres/internal/adapters"
)

const (
	defaultTableName        = "book_details"
	defaultQueryTimeout     = 3 * time.Second
	dialectPostgres         = "postgres"
	colID                   = "id"
	colName                 = "name"
	colDescription          = "description"
	colPublisher            = "publisher"
	colAuthor               = "author"
	logMsgBuildQueryFailed  = "failed to build query"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgIterateRowsFailed = "failed while iterating database rows"
	logMsgRowsAffected      = "failed to get rows affected count"
	logMsgBookSaved         = "book saved"
	logMsgBookDeleted       = "book deleted"
	logMsgSQLExecuted       = "executed sql for: "
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrBookID           = "book_id"
	logAttrRowsAffected     = "rows_affected"
	logAttrDurationMS       = "duration_ms"
	logActionSelect         = "select"
	logActionSave           = "save"
	logActionDelete         = "delete"
	logActionSyncSequence   = "sequence sync"
)

var errNoRowReturned = errors.New("no row returned")

// BookStore implements data.BookStore on a PostgreSQL table.
type BookStore struct {
	db           adapters.DBAdapter
	tableName    string
	queryTimeout time.Duration
	logger       Logger
}

// NewBookStoreFromPGXPool creates a new BookStore using a pgx Pool with optional configuration.
func NewBookStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (BookStore, error) {
	if db == nil {
		return BookStore{}, ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewPool(db), options...)
}

// NewBookStoreFromSQLDB creates a new BookStore using a sql.DB with optional configuration.
func NewBookStoreFromSQLDB(db *sql.DB, options ...Option) (BookStore, error) {
	if db == nil {
		return BookStore{}, ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQL(db), options...)
}

// NewBookStoreFromSQLX creates a new BookStore using a sqlx.DB with optional configuration.
func NewBookStoreFromSQLX(db *sqlx.DB, options ...Option) (BookStore, error) {
	if db == nil {
		return BookStore{}, ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLX(db), options...)
}

func newBookStore(db adapters.DBAdapter, options ...Option) (BookStore, error) {
	s := BookStore{
		db:           db,
		tableName:    defaultTableName,
		queryTimeout: defaultQueryTimeout,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return BookStore{}, err
		}
	}

	return s, nil
}

// FetchByID returns the book with the given id, or found == false if there is none.
func (s BookStore) FetchByID(ctx context.Context, id int64) (*data.Book, bool, error) {
	sqlQuery, args, buildErr := s.buildSelectQuery(goqu.Ex{colID: id})
	if buildErr != nil {
		return nil, false, buildErr
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, queryErr := s.executeQuery(ctx, sqlQuery, args)
	if queryErr != nil {
		return nil, false, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		if iterErr := s.rowsErr(rows); iterErr != nil {
			return nil, false, iterErr
		}
		return nil, false, nil
	}

	book, scanErr := s.scanBook(rows)
	if scanErr != nil {
		return nil, false, scanErr
	}

	return book, true, nil
}

// FetchAll yields every book ordered by id.
func (s BookStore) FetchAll(ctx context.Context) iter.Seq2[*data.Book, error] {
	return s.stream(ctx)
}

// FetchByAuthor yields the books written by author, ordered by id.
func (s BookStore) FetchByAuthor(ctx context.Context, author string) iter.Seq2[*data.Book, error] {
	return s.stream(ctx, goqu.Ex{colAuthor: author})
}

// FetchByNameAndAuthor yields the books matching both name and author, ordered by id.
func (s BookStore) FetchByNameAndAuthor(ctx context.Context, name, author string) iter.Seq2[*data.Book, error] {
	return s.stream(ctx, goqu.Ex{colName: name, colAuthor: author})
}

// stream runs the select when iteration starts and yields one book per row.
// The result set is released when iteration ends, early or not.
func (s BookStore) stream(ctx context.Context, where ...exp.Expression) iter.Seq2[*data.Book, error] {
	return data.SingleUse(func(yield func(*data.Book, error) bool) {
		sqlQuery, args, buildErr := s.buildSelectQuery(where...)
		if buildErr != nil {
			yield(nil, buildErr)
			return
		}

		ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()

		rows, queryErr := s.executeQuery(ctx, sqlQuery, args)
		if queryErr != nil {
			yield(nil, queryErr)
			return
		}
		defer s.closeRows(rows)

		for rows.Next() {
			book, scanErr := s.scanBook(rows)
			if scanErr != nil {
				yield(nil, scanErr)
				return
			}
			if !yield(book, nil) {
				return
			}
		}

		if iterErr := s.rowsErr(rows); iterErr != nil {
			yield(nil, iterErr)
		}
	})
}

// Save inserts book when its ID is zero and otherwise upserts it on its ID.
// The row as stored by the database is returned.
func (s BookStore) Save(ctx context.Context, book *data.Book) (*data.Book, error) {
	if book == nil {
		return nil, data.ErrNilBook
	}

	sqlQuery, args, buildErr := s.buildSaveQuery(book)
	if buildErr != nil {
		return nil, buildErr
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	saved, saveErr := s.saveRow(ctx, sqlQuery, args)
	if saveErr != nil {
		return nil, saveErr
	}

	if book.ID != 0 {
		if syncErr := s.syncIDSequence(ctx); syncErr != nil {
			return nil, syncErr
		}
	}

	s.logOperation(logMsgBookSaved, logAttrBookID, saved.ID, logAttrDurationMS, time.Since(start).Milliseconds())

	return saved, nil
}

// saveRow runs the insert or upsert and scans the returned row. The result set
// is released before saveRow returns.
func (s BookStore) saveRow(ctx context.Context, sqlQuery string, args []any) (*data.Book, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(sqlQuery, logActionSave, time.Since(start))

	if queryErr != nil {
		s.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrSavingBookFailed, queryErr)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		iterErr := rows.Err()
		if iterErr == nil {
			iterErr = errNoRowReturned
		}
		s.logError(logMsgDBQueryFailed, iterErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrSavingBookFailed, iterErr)
	}

	return s.scanBook(rows)
}

// syncIDSequence moves the id sequence past the highest stored id, so a book
// saved with an explicit id is never handed out again by a plain insert.
// The sequence only ever moves forward.
func (s BookStore) syncIDSequence(ctx context.Context) error {
	sqlQuery, args, buildErr := s.buildSequenceSyncQuery()
	if buildErr != nil {
		return buildErr
	}

	start := time.Now()
	_, execErr := s.db.Exec(ctx, sqlQuery, args...)
	s.logQueryWithDuration(sqlQuery, logActionSyncSequence, time.Since(start))

	if execErr != nil {
		s.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return errors.Join(ErrSyncingSequenceFailed, execErr)
	}

	return nil
}

// DeleteByID removes the book with the given id. Deleting a missing row is not an error.
func (s BookStore) DeleteByID(ctx context.Context, id int64) error {
	sqlQuery, args, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Prepared(true).
		Where(goqu.Ex{colID: id}).
		ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, logActionDelete, duration)

	if execErr != nil {
		s.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return errors.Join(ErrDeletingBookFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(logMsgRowsAffected, rowsAffectedErr)
		return errors.Join(ErrDeletingBookFailed, rowsAffectedErr)
	}

	s.logOperation(logMsgBookDeleted, logAttrBookID, id, logAttrRowsAffected, rowsAffected, logAttrDurationMS, duration.Milliseconds())

	return nil
}

// Delete removes book by its ID.
func (s BookStore) Delete(ctx context.Context, book *data.Book) error {
	if book == nil {
		return data.ErrNilBook
	}

	return s.DeleteByID(ctx, book.ID)
}

// Ping checks that the database is reachable.
func (s BookStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.db.Ping(ctx)
}

// buildSequenceSyncQuery renders
//
//	SELECT setval(seq, GREATEST(MAX(id), COALESCE(pg_sequence_last_value(seq), 0))) FROM table
//
// where seq is the sequence behind the id column.
func (s BookStore) buildSequenceSyncQuery() (string, []any, error) {
	sequence := goqu.Cast(goqu.Func("pg_get_serial_sequence", s.tableName, colID), "REGCLASS")

	sqlQuery, args, toSQLErr := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Prepared(true).
		Select(goqu.Func("setval", sequence, goqu.Func("GREATEST",
			goqu.MAX(colID),
			goqu.COALESCE(goqu.Func("pg_sequence_last_value", sequence), 0),
		))).
		ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr)
		return "", nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (s BookStore) buildSelectQuery(where ...exp.Expression) (string, []any, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Prepared(true).
		Select(colID, colName, colDescription, colPublisher, colAuthor).
		Order(goqu.I(colID).Asc())

	if len(where) > 0 {
		selectStmt = selectStmt.Where(where...)
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr)
		return "", nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// buildSaveQuery renders a plain insert for new books and an upsert on id for
// books that carry an identity.
func (s BookStore) buildSaveQuery(book *data.Book) (string, []any, error) {
	record := goqu.Record{
		colName:        book.Name,
		colDescription: book.Description,
		colPublisher:   book.Publisher,
		colAuthor:      book.Author,
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Prepared(true).
		Returning(colID, colName, colDescription, colPublisher, colAuthor)

	if book.ID != 0 {
		record[colID] = book.ID
		insertStmt = insertStmt.OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colName:        goqu.L("EXCLUDED." + colName),
			colDescription: goqu.L("EXCLUDED." + colDescription),
			colPublisher:   goqu.L("EXCLUDED." + colPublisher),
			colAuthor:      goqu.L("EXCLUDED." + colAuthor),
		}))
	}

	sqlQuery, args, toSQLErr := insertStmt.Rows(record).ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr)
		return "", nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// executeQuery executes the SQL query and logs it with its timing.
func (s BookStore) executeQuery(ctx context.Context, sqlQuery string, args []any) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(sqlQuery, logActionSelect, time.Since(start))

	if queryErr != nil {
		s.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingBooksFailed, queryErr)
	}

	return rows, nil
}

func (s BookStore) scanBook(rows adapters.DBRows) (*data.Book, error) {
	var book data.Book

	rowScanErr := rows.Scan(&book.ID, &book.Name, &book.Description, &book.Publisher, &book.Author)
	if rowScanErr != nil {
		s.logError(logMsgScanRowFailed, rowScanErr)
		return nil, errors.Join(ErrScanningRowFailed, rowScanErr)
	}

	return &book, nil
}

func (s BookStore) rowsErr(rows adapters.DBRows) error {
	if iterErr := rows.Err(); iterErr != nil {
		s.logError(logMsgIterateRowsFailed, iterErr)
		return errors.Join(ErrQueryingBooksFailed, iterErr)
	}

	return nil
}

// closeRows safely closes database rows and logs any errors.
func (s BookStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s BookStore) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrQuery, sqlQuery, logAttrDurationMS, duration.Milliseconds())
	}
}

func (s BookStore) logOperation(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s BookStore) logError(msg string, err error, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, append([]any{logAttrError, err.Error()}, args...)...)
	}
}
