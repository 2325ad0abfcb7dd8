// Package response provides shared JSON response helpers for HTTP handlers.
//
// The media API uses the messenger's legacy wire shapes: errors are reported
// as {"errors": ["message"]} and batch uploads as {"files": ["url", ...]}.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the standard error payload.
type ErrorBody struct {
	Errors []string `json:"errors"`
}

// FilesBody is the payload for batch upload responses.
type FilesBody struct {
	Files []string `json:"files"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes an empty 200 response.
func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

// Files writes a 200 response listing the public URLs of stored files.
// A batch where every file was skipped still yields an empty, non-null list.
func Files(w http.ResponseWriter, urls []string) {
	if urls == nil {
		urls = []string{}
	}
	JSON(w, http.StatusOK, FilesBody{Files: urls})
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Errors: []string{message}})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "an error occurred while uploading")
}
