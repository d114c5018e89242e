// internal/data/models.go
package data

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
)

// ErrSequenceConsumed is yielded when a book sequence is ranged over a second time.
var ErrSequenceConsumed = errors.New("book sequence already consumed")

// ErrNilBook is returned by stores asked to save or delete a nil book.
var ErrNilBook = errors.New("book must not be nil")

// BookStore is the contract every storage backend fulfils.
//
// Lookups that can miss report absence with found == false and a nil error;
// an error always means the store itself failed. Sequences are lazy: the
// query runs when iteration starts, and a sequence can only be ranged once.
type BookStore interface {
	FetchByID(ctx context.Context, id int64) (book *Book, found bool, err error)
	FetchAll(ctx context.Context) iter.Seq2[*Book, error]
	FetchByAuthor(ctx context.Context, author string) iter.Seq2[*Book, error]
	FetchByNameAndAuthor(ctx context.Context, name, author string) iter.Seq2[*Book, error]

	// Save inserts book when its ID is zero and otherwise writes it under
	// its ID, inserting or overwriting. The persisted row is returned.
	Save(ctx context.Context, book *Book) (*Book, error)

	DeleteByID(ctx context.Context, id int64) error
	Delete(ctx context.Context, book *Book) error

	Ping(ctx context.Context) error
}

// Models is a top-level container that groups all storage types together.
// It is passed around the application via applicationDependencies so every
// handler has access to storage without knowing which backend is in use.
type Models struct {
	Books BookStore
}

// NewModels constructs a Models value around the given book store.
func NewModels(books BookStore) Models {
	return Models{Books: books}
}

// SingleUse wraps seq so that it can be ranged only once. Later attempts
// yield a single ErrSequenceConsumed.
func SingleUse(seq iter.Seq2[*Book, error]) iter.Seq2[*Book, error] {
	var used atomic.Bool
	return func(yield func(*Book, error) bool) {
		if used.Swap(true) {
			yield(nil, ErrSequenceConsumed)
			return
		}
		seq(yield)
	}
}

// Failed returns a sequence that yields err and stops.
func Failed(err error) iter.Seq2[*Book, error] {
	return func(yield func(*Book, error) bool) {
		yield(nil, err)
	}
}

// Collect drains seq into a slice. It stops at the first error. The result is
// never nil so it encodes as an empty JSON array.
func Collect(seq iter.Seq2[*Book, error]) ([]*Book, error) {
	books := []*Book{}
	for book, err := range seq {
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}
