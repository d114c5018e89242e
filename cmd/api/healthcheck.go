// cmd/api/healthcheck.go
package main

import "net/http"

// healthcheckHandler handles GET /v1/healthcheck.
// It reports "available" when the book store answers a ping, and responds
// 503 with "unavailable" otherwise.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "available", http.StatusOK
	if err := app.models.Books.Ping(r.Context()); err != nil {
		app.logError(r, err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	env := envelope{
		"status": status,
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     appVersion,
		},
	}

	err := app.writeJSON(w, code, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
