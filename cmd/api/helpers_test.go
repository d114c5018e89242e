package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/lab5-books/internal/data"
	"github.com/aoideee/lab5-books/internal/data/memory"
)

func Test_WriteJSON_ShouldWriteIndentedEnvelopeAndHeaders(t *testing.T) {
	app := newTestApp(t, memory.NewStore())
	rec := httptest.NewRecorder()
	headers := make(http.Header)
	headers.Set("Location", "/v1/books/1")

	err := app.writeJSON(rec, http.StatusOK, envelope{"book": data.Book{ID: 1, Name: "A"}}, headers)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "/v1/books/1", rec.Header().Get("Location"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "{\n  \"book\": {"), body)
	assert.True(t, strings.HasSuffix(body, "}\n"), body)
	assert.NotContains(t, body, "\t")
	assert.Equal(t, data.Book{ID: 1, Name: "A"}, decodeBook(t, rec))
}

func Test_ReadJSON_ShouldDecodeExactlyOneValue(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"single value", `{"name":"A"}`, ""},
		{"trailing newline", "{\"name\":\"A\"}\n", ""},
		{"empty", "", "body must not be empty"},
		{"second object", `{"name":"A"}{}`, "body must only contain a single JSON value"},
		{"closing bracket", `{"name":"A"}]`, "body must only contain a single JSON value"},
		{"closing brace", `{"name":"A"}}`, "body must only contain a single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, memory.NewStore())
			req := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(tt.body))

			var input data.BookInput
			err := app.readJSON(httptest.NewRecorder(), req, &input)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "A", input.Name)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
