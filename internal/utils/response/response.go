// Package response provides helpers for writing consistent JSON HTTP
// responses from the ops endpoints.
package response

import (
	"encoding/json"
	"net/http"
)

// Response is the standard envelope for ops endpoints:
//
//	{ "status": "ok", "records": 3 }
//	{ "status": "error", "error": "storage unavailable" }
type Response struct {
	Status  string `json:"status"`
	Records *int   `json:"records,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data JSON-encoded with the given HTTP status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK reports a healthy state with the number of stored records.
func OK(records int) Response {
	return Response{Status: StatusOK, Records: &records}
}

// GeneralError wraps a message into the error envelope.
func GeneralError(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}
