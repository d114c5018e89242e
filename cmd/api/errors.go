// cmd/api/errors.go
// This file contains all error-response helpers for the application.
// Every error body has the shape {"error": ..., "request_id": "..."}.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// logError logs an internal error at ERROR level with the request method, URL and id for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.ErrorContext(r.Context(), err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", requestIDFromContext(r.Context())),
	)
}

// errorResponse sends a JSON error envelope with the given status code and message.
// The request id is echoed so a client report can be matched with the logs.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	env := envelope{"error": message}
	if id := requestIDFromContext(r.Context()); id != "" {
		env["request_id"] = id
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs a failed store call or other internal error and
// sends a generic message. A store that ran out of time gets a 503 instead of
// a 500. Error details are never exposed to the client.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	if errors.Is(err, context.DeadlineExceeded) {
		app.errorResponse(w, r, http.StatusServiceUnavailable, "the book store did not answer in time, please try again later")
		return
	}
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// notFoundResponse sends a 404 Not Found error.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse sends a 400 with the decoding or parameter error.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse sends a 422 Unprocessable Entity response containing
// the field-level validation errors collected by a Validator.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, fieldErrors)
}

// rateLimitExceededResponse sends a 429 and tells the client when to come back.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	seconds := int(retryAfter.Round(time.Second) / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}
