// Package service orchestrates the book operations on top of a data.BookStore.
//
// Every operation is a short pipeline of store calls run on the caller's
// goroutine. Absence is never an error: lookups and mutations of a missing
// book report found == false, and deleting a missing book succeeds without
// touching the store. Store failures are returned as they are.
//
// Store calls are issued with a context that is detached from the caller's
// cancellation, so a request abandoned mid-pipeline never cuts off a write
// that is already in flight. Each store bounds its own calls with a timeout.
package service

import (
	"context"
	"iter"
	"log/slog"

	"github.com/aoideee/lab5-books/internal/data"
)

// BookService implements the create, read, update, partial update, delete and
// find operations for books.
type BookService struct {
	store  data.BookStore
	logger *slog.Logger
}

// New creates a BookService backed by store. A nil logger discards output.
func New(store data.BookStore, logger *slog.Logger) *BookService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BookService{store: store, logger: logger}
}

// Create saves a new book and returns it with its store-assigned identity.
// It does not check whether a book with the same identity already exists.
func (s *BookService) Create(ctx context.Context, in data.BookInput) (*data.Book, error) {
	return s.store.Save(context.WithoutCancel(ctx), in.Book())
}

// GetAll returns every book in store order. The sequence is lazy and can be
// ranged only once; an empty store gives an empty sequence.
func (s *BookService) GetAll(ctx context.Context) iter.Seq2[*data.Book, error] {
	return s.store.FetchAll(context.WithoutCancel(ctx))
}

// Get returns the book with the given id. found is false if there is none.
func (s *BookService) Get(ctx context.Context, id int64) (book *data.Book, found bool, err error) {
	return s.store.FetchByID(context.WithoutCancel(ctx), id)
}

// Update replaces the name, publisher, author and description of the book
// with the values in the input, empty ones included. The identity is kept.
func (s *BookService) Update(ctx context.Context, in data.BookInput, id int64) (*data.Book, bool, error) {
	return s.mutate(ctx, id, func(book *data.Book) (*data.Book, error) {
		book.Name = in.Name
		book.Publisher = in.Publisher
		book.Author = in.Author
		book.Description = in.Description
		return s.store.Save(context.WithoutCancel(ctx), book)
	})
}

// PartialUpdate merges the non-nil fields of patch into the stored book and
// saves the result with a single write.
func (s *BookService) PartialUpdate(ctx context.Context, patch data.BookPatch, id int64) (*data.Book, bool, error) {
	return s.mutate(ctx, id, func(book *data.Book) (*data.Book, error) {
		patch.Apply(book)
		return s.store.Save(context.WithoutCancel(ctx), book)
	})
}

// Delete removes the book with the given id. Deleting a missing book is a no-op.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	_, _, err := s.mutate(ctx, id, func(book *data.Book) (*data.Book, error) {
		return nil, s.store.Delete(context.WithoutCancel(ctx), book)
	})
	return err
}

// FindByAuthor returns the books written by author.
func (s *BookService) FindByAuthor(ctx context.Context, author string) iter.Seq2[*data.Book, error] {
	return s.store.FetchByAuthor(context.WithoutCancel(ctx), author)
}

// FindByNameAndAuthor returns the books with the given name written by author.
func (s *BookService) FindByNameAndAuthor(ctx context.Context, name, author string) iter.Seq2[*data.Book, error] {
	return s.store.FetchByNameAndAuthor(context.WithoutCancel(ctx), name, author)
}

// mutate fetches the book with the given id and, if it exists, hands it to
// persist. A missing book ends the pipeline with found == false and no write.
func (s *BookService) mutate(ctx context.Context, id int64, persist func(*data.Book) (*data.Book, error)) (*data.Book, bool, error) {
	book, found, err := s.store.FetchByID(context.WithoutCancel(ctx), id)
	if err != nil {
		return nil, false, err
	}
	if !found {
		s.logger.DebugContext(ctx, "book not found, nothing to change", "book_id", id)
		return nil, false, nil
	}

	updated, err := persist(book)
	if err != nil {
		return nil, false, err
	}

	return updated, true, nil
}
