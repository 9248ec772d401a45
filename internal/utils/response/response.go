// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the envelope returned for error cases.
//
// Error responses look like:
//
//	{ "error": "Name must be 30 characters or less." }
//
// or, when a partial update broke several rules at once:
//
//	{ "error": "Validation failed", "details": ["'age' is not a valid field", "Invalid email format"] }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Message is the envelope for outcomes that are described, not returned:
// deletes, "not found", and the ping check.
type Message struct {
	Message string `json:"message"`
}

// Mutation is returned by create, replace and patch.
// UpdatedFields is only set for patch.
type Mutation struct {
	ID            int64    `json:"id"`
	Message       string   `json:"message"`
	UpdatedFields []string `json:"updatedFields,omitempty"`
}

// Fixed client-facing texts.
const (
	MsgNotFound      = "Student not found"
	MsgCreated       = "Student added successfully"
	MsgUpdated       = "Student updated successfully"
	MsgDeleted       = "Student deleted successfully"
	MsgDatabaseError = "Database error"
	MsgInternal      = "Something went wrong!"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the error envelope. Use this for
// decode failures and store errors; the message is passed through as is.
func GeneralError(err error) Response {
	return Response{Error: err.Error()}
}

// ValidationError converts a validation failure into the error envelope,
// keeping the per-field details when there are any.
func ValidationError(err *validation.Error) Response {
	return Response{
		Error:   err.Message,
		Details: err.Details,
	}
}

// DatabaseError is the envelope for a failed partial update write.
func DatabaseError(err error) Response {
	return Response{
		Error:   MsgDatabaseError,
		Details: []string{err.Error()},
	}
}

// NotFound is the body of every 404.
func NotFound() Message {
	return Message{Message: MsgNotFound}
}
