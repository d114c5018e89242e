// cmd/api/handlers.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and the book service.
package main

import (
	"fmt"
	"iter"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/lab5-books/internal/data"
	"github.com/aoideee/lab5-books/internal/validator"
)

// createBookHandler handles POST /v1/books.
// It reads a JSON body containing the new book's details, saves it, and
// responds with the stored book including its store-assigned ID.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidateNewBook(v, input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book, err := app.books.Create(r.Context(), input)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/books/%d", book.ID))

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id.
// Responds 404 if no book with that ID exists.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, found, err := app.books.Get(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !found {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /v1/books.
// It returns every book as a JSON array, which is empty when there are none.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	app.writeBooks(w, r, app.books.GetAll(r.Context()))
}

// updateBookHandler handles PUT /v1/books/:id.
// It replaces name, description, publisher and author with the values from
// the body; fields left out of the body are written as empty strings.
// Responds 404 if the book does not exist.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.BookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidateReplacement(v, input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book, found, err := app.books.Update(r.Context(), input, id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !found {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// partialUpdateBookHandler handles PATCH /v1/books/:id.
// Only the fields present (and not null) in the body are changed.
// Responds 404 if the book does not exist.
func (app *applicationDependencies) partialUpdateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var patch data.BookPatch
	err = app.readJSON(w, r, &patch)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidatePatch(v, patch); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book, found, err := app.books.PartialUpdate(r.Context(), patch, id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !found {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id.
// Deleting a book that does not exist still responds 200.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.books.Delete(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksByAuthorHandler handles GET /v1/authors/:author/books.
func (app *applicationDependencies) listBooksByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	author := httprouter.ParamsFromContext(r.Context()).ByName("author")
	app.writeBooks(w, r, app.books.FindByAuthor(r.Context(), author))
}

// searchBooksHandler handles GET /v1/search/books?name=...&author=...
// Both query parameters are required.
func (app *applicationDependencies) searchBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	name := app.readString(qs, "name", "")
	author := app.readString(qs, "author", "")

	v := validator.New()
	v.Check(name != "", "name", "must be provided")
	v.Check(author != "", "author", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	app.writeBooks(w, r, app.books.FindByNameAndAuthor(r.Context(), name, author))
}

// writeBooks drains books and responds with {"books": [...]}. A store error
// met while draining becomes a 500 before anything has been written.
func (app *applicationDependencies) writeBooks(w http.ResponseWriter, r *http.Request, books iter.Seq2[*data.Book, error]) {
	list, err := data.Collect(books)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": list}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
