// Package data provides the Book data model, the request input types and the
// storage contract the rest of the application is written against.
package data

import "github.com/aoideee/lab5-books/internal/validator"

// maxFieldBytes caps every text column of a book.
const maxFieldBytes = 500

// Book represents a single book record stored in the database.
// It maps directly to a row in the "book_details" table.
type Book struct {
	ID          int64  `json:"id"`          // Unique identifier assigned by the store
	Name        string `json:"name"`        // Title of the book
	Description string `json:"description"` // Optional short description
	Publisher   string `json:"publisher"`   // Name of the publishing company
	Author      string `json:"author"`      // Author of the book
}

// BookInput holds the fields a client supplies when creating a book or
// replacing all of its mutable fields. Missing fields decode to "".
// ID is accepted on create and handed to the store untouched.
type BookInput struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Publisher   string `json:"publisher"`
	Author      string `json:"author"`
}

// Book converts the input into a Book ready to be saved.
func (in BookInput) Book() *Book {
	return &Book{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Publisher:   in.Publisher,
		Author:      in.Author,
	}
}

// BookPatch holds the fields a client may supply when partially updating a book.
// Every field is a pointer so we can distinguish between "not provided" (nil)
// and "intentionally set to empty". A JSON null is treated as not provided.
type BookPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Publisher   *string `json:"publisher"`
	Author      *string `json:"author"`
}

// Apply copies every non-nil field of the patch onto book.
func (p BookPatch) Apply(book *Book) {
	if p.Name != nil {
		book.Name = *p.Name
	}
	if p.Description != nil {
		book.Description = *p.Description
	}
	if p.Publisher != nil {
		book.Publisher = *p.Publisher
	}
	if p.Author != nil {
		book.Author = *p.Author
	}
}

// ValidateNewBook checks the input of a create request.
func ValidateNewBook(v *validator.Validator, in BookInput) {
	v.Check(in.ID >= 0, "id", "must not be negative")
	v.Check(validator.NotBlank(in.Name), "name", "must be provided")
	validateLengths(v, in.Name, in.Description, in.Publisher, in.Author)
}

// ValidateReplacement checks the input of a full update. Empty fields are
// allowed; they overwrite whatever is stored.
func ValidateReplacement(v *validator.Validator, in BookInput) {
	validateLengths(v, in.Name, in.Description, in.Publisher, in.Author)
}

// ValidatePatch checks the fields present in a partial update.
func ValidatePatch(v *validator.Validator, p BookPatch) {
	validateLengths(v, deref(p.Name), deref(p.Description), deref(p.Publisher), deref(p.Author))
}

func validateLengths(v *validator.Validator, name, description, publisher, author string) {
	for key, value := range map[string]string{"name": name, "description": description, "publisher": publisher, "author": author} {
		v.Check(validator.ValidUTF8(value), key, "must be valid UTF-8")
	}
	v.Check(validator.MaxBytes(name, maxFieldBytes), "name", "must not be more than 500 bytes long")
	v.Check(validator.MaxBytes(description, maxFieldBytes), "description", "must not be more than 500 bytes long")
	v.Check(validator.MaxBytes(publisher, maxFieldBytes), "publisher", "must not be more than 500 bytes long")
	v.Check(validator.MaxBytes(author, maxFieldBytes), "author", "must not be more than 500 bytes long")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
