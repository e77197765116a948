package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// JSONResponseBuilder assembles a response before it is written.
type JSONResponseBuilder struct {
	statusCode  int
	headers     map[string]string
	body        any
	raw         []byte
	contentType string
}

// NewJSONResponse starts a 200 application/json response.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode:  http.StatusOK,
		headers:     make(map[string]string),
		contentType: "application/json; charset=utf-8",
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as JSON.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	b.raw = nil
	return b
}

// Attachment replaces the JSON body with a file download.
func (b *JSONResponseBuilder) Attachment(filename, contentType string, data []byte) *JSONResponseBuilder {
	b.raw = data
	b.body = nil
	b.contentType = contentType
	b.headers["Content-Disposition"] = fmt.Sprintf("attachment; filename=%q", filename)
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", b.contentType)

	if b.raw != nil {
		w.WriteHeader(b.statusCode)
		if _, err := w.Write(b.raw); err != nil {
			slog.Error("Failed to write response body", "error", err)
		}
		return
	}

	data, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error","stack":null}`))
		return
	}
	w.WriteHeader(b.statusCode)
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Error("Failed to write response body", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
