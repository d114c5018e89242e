package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/lab5-books/internal/data"
	"github.com/aoideee/lab5-books/internal/data/postgres/internal/adapters"
)

// fakeAdapter records every statement and answers with canned rows or errors.
type fakeAdapter struct {
	queries  []string
	args     [][]any
	rows     [][]any
	queryErr error
	iterErr  error
	execErr  error
	affected int64
	pingErr  error
	closed   int

	// closed count seen by each Exec
	closedAtExec []int
}

func (f *fakeAdapter) Query(_ context.Context, query string, args ...any) (adapters.DBRows, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{adapter: f, rows: f.rows, pos: -1, err: f.iterErr}, nil
}

func (f *fakeAdapter) Exec(_ context.Context, query string, args ...any) (adapters.DBResult, error) {
	f.closedAtExec = append(f.closedAtExec, f.closed)
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return fakeResult(f.affected), nil
}

func (f *fakeAdapter) Ping(context.Context) error {
	return f.pingErr
}

type fakeRows struct {
	adapter *fakeAdapter
	rows    [][]any
	pos     int
	err     error
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, value := range row {
		switch d := dest[i].(type) {
		case *int64:
			v, ok := value.(int64)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into int64", i, value)
			}
			*d = v
		case *string:
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("column %d: cannot scan %T into string", i, value)
			}
			*d = v
		default:
			return fmt.Errorf("column %d: unsupported destination %T", i, dest[i])
		}
	}
	return nil
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) Close() error {
	r.adapter.closed++
	return nil
}

type fakeResult int64

func (f fakeResult) RowsAffected() (int64, error) {
	return int64(f), nil
}

func row(id int64, name, description, publisher, author string) []any {
	return []any{id, name, description, publisher, author}
}

func newTestStore(t *testing.T, db *fakeAdapter, options ...Option) BookStore {
	t.Helper()
	store, err := newBookStore(db, options...)
	require.NoError(t, err)
	return store
}

func Test_Constructors_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	_, err := NewBookStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = NewBookStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = NewBookStoreFromSQLX(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
}

func Test_Options_ShouldRejectInvalidValues(t *testing.T) {
	_, err := newBookStore(&fakeAdapter{}, WithTableName(""))
	assert.ErrorIs(t, err, ErrEmptyTableName)

	_, err = newBookStore(&fakeAdapter{}, WithQueryTimeout(0))
	assert.ErrorIs(t, err, ErrInvalidQueryTimeout)

	store, err := newBookStore(&fakeAdapter{}, WithTableName("catalog"), WithQueryTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "catalog", store.tableName)
	assert.Equal(t, time.Second, store.queryTimeout)
}

func Test_FetchByID_ShouldReturnTheScannedBook(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(7, "A", "D", "P", "X")}}
	store := newTestStore(t, db)

	book, found, err := store.FetchByID(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, &data.Book{ID: 7, Name: "A", Description: "D", Publisher: "P", Author: "X"}, book)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `FROM "book_details"`)
	assert.Contains(t, db.queries[0], `"id" = $1`)
	assert.Equal(t, []any{int64(7)}, db.args[0])
	assert.Equal(t, 1, db.closed)
}

func Test_FetchByID_ShouldReportNotFound_WithoutError(t *testing.T) {
	db := &fakeAdapter{}
	store := newTestStore(t, db)

	book, found, err := store.FetchByID(context.Background(), 7)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, book)
	assert.Equal(t, 1, db.closed)
}

func Test_FetchByID_ShouldJoinSentinel_WhenQueryFails(t *testing.T) {
	driverErr := errors.New("connection refused")
	store := newTestStore(t, &fakeAdapter{queryErr: driverErr})

	_, found, err := store.FetchByID(context.Background(), 7)

	assert.False(t, found)
	assert.ErrorIs(t, err, ErrQueryingBooksFailed)
	assert.ErrorIs(t, err, driverErr)
}

func Test_FetchByID_ShouldJoinSentinel_WhenRowCannotBeScanned(t *testing.T) {
	store := newTestStore(t, &fakeAdapter{rows: [][]any{{"not-an-id", "A", "D", "P", "X"}}})

	_, _, err := store.FetchByID(context.Background(), 7)

	assert.ErrorIs(t, err, ErrScanningRowFailed)
}

func Test_FetchAll_ShouldBeLazyAndOrderedByID(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(1, "A", "", "", "X"), row(2, "B", "", "", "X")}}
	store := newTestStore(t, db)

	seq := store.FetchAll(context.Background())
	assert.Empty(t, db.queries, "no query before iteration starts")

	books, err := data.Collect(seq)

	require.NoError(t, err)
	assert.Equal(t, []*data.Book{{ID: 1, Name: "A", Author: "X"}, {ID: 2, Name: "B", Author: "X"}}, books)
	require.Len(t, db.queries, 1)
	assert.NotContains(t, db.queries[0], "WHERE")
	assert.Contains(t, db.queries[0], `ORDER BY "id" ASC`)
	assert.Equal(t, 1, db.closed)

	_, err = data.Collect(seq)
	assert.ErrorIs(t, err, data.ErrSequenceConsumed)
	assert.Len(t, db.queries, 1)
}

func Test_FetchAll_ShouldCloseRows_WhenIterationStopsEarly(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(1, "A", "", "", ""), row(2, "B", "", "", "")}}
	store := newTestStore(t, db)

	for range store.FetchAll(context.Background()) {
		break
	}

	assert.Equal(t, 1, db.closed)
}

func Test_FetchAll_ShouldYieldError_WhenIterationFails(t *testing.T) {
	driverErr := errors.New("connection reset")
	store := newTestStore(t, &fakeAdapter{rows: [][]any{row(1, "A", "", "", "")}, iterErr: driverErr})

	books, err := data.Collect(store.FetchAll(context.Background()))

	assert.Nil(t, books)
	assert.ErrorIs(t, err, ErrQueryingBooksFailed)
	assert.ErrorIs(t, err, driverErr)
}

func Test_FetchByAuthor_ShouldFilterOnAuthor(t *testing.T) {
	db := &fakeAdapter{}
	store := newTestStore(t, db)

	books, err := data.Collect(store.FetchByAuthor(context.Background(), "X"))

	require.NoError(t, err)
	assert.Empty(t, books)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `"author" = $1`)
	assert.Equal(t, []any{"X"}, db.args[0])
}

func Test_FetchByNameAndAuthor_ShouldFilterOnBothColumns(t *testing.T) {
	db := &fakeAdapter{}
	store := newTestStore(t, db, WithTableName("catalog"))

	_, err := data.Collect(store.FetchByNameAndAuthor(context.Background(), "A", "X"))

	require.NoError(t, err)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `FROM "catalog"`)
	assert.Contains(t, db.queries[0], `"author" = $1`)
	assert.Contains(t, db.queries[0], `"name" = $2`)
	assert.Equal(t, []any{"X", "A"}, db.args[0])
}

func Test_Save_ShouldInsertWithoutID_WhenBookIsNew(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(5, "A", "D", "P", "X")}}
	store := newTestStore(t, db)

	saved, err := store.Save(context.Background(), &data.Book{Name: "A", Description: "D", Publisher: "P", Author: "X"})

	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.ID)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `INSERT INTO "book_details"`)
	assert.Contains(t, db.queries[0], "RETURNING")
	assert.NotContains(t, db.queries[0], "ON CONFLICT")
	assert.Equal(t, []any{"X", "D", "A", "P"}, db.args[0])
}

func Test_Save_ShouldUpsertOnID_WhenBookHasIdentity(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(9, "A", "", "", "")}}
	store := newTestStore(t, db)

	saved, err := store.Save(context.Background(), &data.Book{ID: 9, Name: "A"})

	require.NoError(t, err)
	assert.Equal(t, &data.Book{ID: 9, Name: "A"}, saved)
	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[0], "ON CONFLICT")
	assert.Contains(t, db.queries[0], "EXCLUDED.name")
	assert.Contains(t, db.queries[0], "EXCLUDED.author")
	assert.Contains(t, db.args[0], int64(9))
}

func Test_Save_ShouldMoveIDSequencePastExplicitID(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(2, "A", "", "", "")}}
	store := newTestStore(t, db, WithTableName("catalog"))

	_, err := store.Save(context.Background(), &data.Book{ID: 2, Name: "A"})

	require.NoError(t, err)
	require.Len(t, db.queries, 2)
	sync := db.queries[1]
	assert.Contains(t, sync, "setval(")
	assert.Contains(t, sync, "pg_get_serial_sequence(")
	assert.Contains(t, sync, "GREATEST(")
	assert.Contains(t, sync, `MAX("id")`)
	assert.Contains(t, sync, "pg_sequence_last_value(")
	assert.Contains(t, sync, `FROM "catalog"`)
	assert.Contains(t, db.args[1], "catalog")
	assert.Contains(t, db.args[1], "id")
	assert.Equal(t, []int{1}, db.closedAtExec, "upsert rows must be released before the sync runs")
}

func Test_Save_ShouldNotTouchIDSequence_ForPlainInsert(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{row(1, "A", "", "", "")}}
	store := newTestStore(t, db)

	_, err := store.Save(context.Background(), &data.Book{Name: "A"})

	require.NoError(t, err)
	require.Len(t, db.queries, 1)
	assert.NotContains(t, db.queries[0], "setval")
}

func Test_Save_ShouldReportFailedSequenceSync(t *testing.T) {
	driverErr := errors.New("permission denied for sequence")
	db := &fakeAdapter{rows: [][]any{row(2, "A", "", "", "")}, execErr: driverErr}
	store := newTestStore(t, db)

	_, err := store.Save(context.Background(), &data.Book{ID: 2, Name: "A"})

	assert.ErrorIs(t, err, ErrSyncingSequenceFailed)
	assert.ErrorIs(t, err, driverErr)
}

func Test_Save_ShouldFail_WhenNoRowIsReturned(t *testing.T) {
	store := newTestStore(t, &fakeAdapter{})

	_, err := store.Save(context.Background(), &data.Book{Name: "A"})

	assert.ErrorIs(t, err, ErrSavingBookFailed)
	assert.ErrorIs(t, err, errNoRowReturned)
}

func Test_Save_ShouldJoinSentinel_WhenDriverFails(t *testing.T) {
	driverErr := errors.New("unique violation")
	store := newTestStore(t, &fakeAdapter{queryErr: driverErr})

	_, err := store.Save(context.Background(), &data.Book{ID: 1, Name: "A"})

	assert.ErrorIs(t, err, ErrSavingBookFailed)
	assert.ErrorIs(t, err, driverErr)
}

func Test_Save_ShouldRejectNilBook(t *testing.T) {
	db := &fakeAdapter{}
	store := newTestStore(t, db)

	_, err := store.Save(context.Background(), nil)

	assert.ErrorIs(t, err, data.ErrNilBook)
	assert.Empty(t, db.queries)
}

func Test_Delete_ShouldDeleteByID(t *testing.T) {
	db := &fakeAdapter{affected: 1}
	store := newTestStore(t, db)

	err := store.Delete(context.Background(), &data.Book{ID: 3})

	require.NoError(t, err)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], `DELETE FROM "book_details"`)
	assert.Equal(t, []any{int64(3)}, db.args[0])
}

func Test_DeleteByID_ShouldSucceed_WhenNothingWasDeleted(t *testing.T) {
	store := newTestStore(t, &fakeAdapter{affected: 0})

	assert.NoError(t, store.DeleteByID(context.Background(), 3))
}

func Test_DeleteByID_ShouldJoinSentinel_WhenDriverFails(t *testing.T) {
	driverErr := errors.New("connection refused")
	store := newTestStore(t, &fakeAdapter{execErr: driverErr})

	err := store.DeleteByID(context.Background(), 3)

	assert.ErrorIs(t, err, ErrDeletingBookFailed)
	assert.ErrorIs(t, err, driverErr)
}

func Test_Ping_ShouldReturnAdapterError(t *testing.T) {
	driverErr := errors.New("down")

	assert.NoError(t, newTestStore(t, &fakeAdapter{}).Ping(context.Background()))
	assert.ErrorIs(t, newTestStore(t, &fakeAdapter{pingErr: driverErr}).Ping(context.Background()), driverErr)
}
