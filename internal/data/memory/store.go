// Package memory provides a thread-safe in-memory data.BookStore.
package memory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/aoideee/lab5-books/internal/data"
)

// Store implements data.BookStore on a map guarded by a sync.RWMutex.
// Books are copied on the way in and on the way out so no caller ever shares
// an instance with another.
type Store struct {
	mu     sync.RWMutex
	books  map[int64]data.Book
	nextID int64
}

// NewStore creates an empty in-memory store. Identities start at 1.
func NewStore() *Store {
	return &Store{
		books:  make(map[int64]data.Book),
		nextID: 1,
	}
}

// FetchByID returns a copy of the book with the given id.
func (s *Store) FetchByID(_ context.Context, id int64) (*data.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, exists := s.books[id]
	if !exists {
		return nil, false, nil
	}
	return &book, true, nil
}

// FetchAll yields every book ordered by ID.
func (s *Store) FetchAll(_ context.Context) iter.Seq2[*data.Book, error] {
	return s.matching(func(data.Book) bool { return true })
}

// FetchByAuthor yields the books written by author, ordered by ID.
func (s *Store) FetchByAuthor(_ context.Context, author string) iter.Seq2[*data.Book, error] {
	return s.matching(func(b data.Book) bool { return b.Author == author })
}

// FetchByNameAndAuthor yields the books matching both name and author, ordered by ID.
func (s *Store) FetchByNameAndAuthor(_ context.Context, name, author string) iter.Seq2[*data.Book, error] {
	return s.matching(func(b data.Book) bool { return b.Name == name && b.Author == author })
}

// matching snapshots the matching books when iteration starts.
func (s *Store) matching(keep func(data.Book) bool) iter.Seq2[*data.Book, error] {
	return data.SingleUse(func(yield func(*data.Book, error) bool) {
		for _, book := range s.snapshot(keep) {
			if !yield(&book, nil) {
				return
			}
		}
	})
}

func (s *Store) snapshot(keep func(data.Book) bool) []data.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]data.Book, 0, len(s.books))
	for _, book := range s.books {
		if keep(book) {
			result = append(result, book)
		}
	}
	slices.SortFunc(result, func(a, b data.Book) int { return cmp.Compare(a.ID, b.ID) })
	return result
}

// Save inserts the book under a fresh identity when its ID is zero and
// otherwise writes it under its own ID.
func (s *Store) Save(_ context.Context, book *data.Book) (*data.Book, error) {
	if book == nil {
		return nil, data.ErrNilBook
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *book
	if stored.ID == 0 {
		stored.ID = s.nextID
	}
	if stored.ID >= s.nextID {
		s.nextID = stored.ID + 1
	}
	s.books[stored.ID] = stored

	return &stored, nil
}

// DeleteByID removes the book with the given id.
// No error if it doesn't exist.
func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.books, id)
	return nil
}

// Delete removes book by its ID.
func (s *Store) Delete(ctx context.Context, book *data.Book) error {
	if book == nil {
		return data.ErrNilBook
	}
	return s.DeleteByID(ctx, book.ID)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored books.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
