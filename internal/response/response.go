// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// Body is the shape of every non-entity response: a human-readable message
// plus, for failures, the underlying cause text for diagnostics.
type Body struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with the payload as the body.
func OK(w http.ResponseWriter, payload interface{}) {
	JSON(w, http.StatusOK, payload)
}

// Message writes a bare confirmation message with the given status.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Body{Message: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Message(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Message(w, http.StatusNotFound, message)
}

// Fail writes a failure response carrying the cause text alongside the message.
func Fail(w http.ResponseWriter, status int, message string, err error) {
	body := Body{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	JSON(w, status, body)
}

// InternalError writes a 500 response with the cause attached.
func InternalError(w http.ResponseWriter, message string, err error) {
	Fail(w, http.StatusInternalServerError, message, err)
}
