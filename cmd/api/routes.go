// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	requestID → logRequest → recoverPanic → rateLimit → router
//
// Current endpoints:
//
//	GET    /v1/healthcheck               – report service status
//	POST   /v1/books                     – create a new book
//	GET    /v1/books                     – list all books
//	GET    /v1/books/:id                 – retrieve a single book by ID
//	PUT    /v1/books/:id                 – replace every field of a book
//	PATCH  /v1/books/:id                 – partially update an existing book
//	DELETE /v1/books/:id                 – delete a book by ID
//	GET    /v1/authors/:author/books     – list the books of one author
//	GET    /v1/search/books?name=&author= – find books by name and author
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	// Book CRUD routes
	router.HandlerFunc(http.MethodPost, "/v1/books", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPut, "/v1/books/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", app.partialUpdateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.deleteBookHandler)

	// Finders live outside /v1/books/ because httprouter cannot mix static
	// segments with the :id wildcard.
	router.HandlerFunc(http.MethodGet, "/v1/authors/:author/books", app.listBooksByAuthorHandler)
	router.HandlerFunc(http.MethodGet, "/v1/search/books", app.searchBooksHandler)

	return app.middleware(router)
}

// middleware wraps next in the chain shared by every route. A recovered panic
// is answered with the request id and logged like any other request.
func (app *applicationDependencies) middleware(next http.Handler) http.Handler {
	return app.requestID(app.logRequest(app.recoverPanic(app.rateLimit(next))))
}
