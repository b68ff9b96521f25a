// Package response writes the JSON envelopes shared by every API endpoint. Successful
// replies wrap their payload in {"data": ...}; failures use {"error": {...}} with one of
// the codes below.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeDuplicate            = "DUPLICATE"
	CodeNotCancellable       = "NOT_CANCELLABLE"
	CodeSignedURLUnavailable = "SIGNED_URL_UNAVAILABLE"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeRateLimited          = "RATE_LIMIT_EXCEEDED"
	CodeNotImplemented       = "NOT_IMPLEMENTED"
	CodeDegraded             = "DEGRADED"
	CodeInternal             = "INTERNAL_ERROR"
)

type envelope struct {
	Data any `json:"data"`
}

type listEnvelope struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ListMeta describes an unpaginated list. Active counts the entries still in progress
// and is omitted for lists where it does not apply.
type ListMeta struct {
	Total  int  `json:"total"`
	Active *int `json:"active,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Data: data})
}

// Accepted answers a request whose work continues in the background. location, when
// set, is where the client can poll for the outcome.
func Accepted(w http.ResponseWriter, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	writeJSON(w, http.StatusAccepted, envelope{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

func List(w http.ResponseWriter, data any, meta ListMeta) {
	writeJSON(w, http.StatusOK, listEnvelope{Data: data, Meta: meta})
}

func Error(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// writeJSON never lets clients cache a reply: job records and signed links change
// between two identical requests.
func writeJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response failed", "status", status, "error", err)
	}
}
