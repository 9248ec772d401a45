// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (storage)
//  2. Returns a function with the exact signature the router needs
//
//	router.HandleFunc("POST /api/students", student.New(storage))
//
// New(storage) is called ONCE at startup. The handler it returns is called
// on EVERY incoming request and shares the same store handle.
//
// Every mutating handler follows the same order: parse the id, decode
// and validate the body, check that the row exists, then run exactly one
// write statement.
package student

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Test2", "email": "test2@university.edu", "major": "Computer Science", "cgpa": 3.5 }
//
// Success response (201 Created):
//
//	{ "id": 1, "message": "Student added successfully" }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed validation,
//	                   or a store error such as a duplicate email
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		student, err := validation.CreateOrReplace(fields)
		if err != nil {
			writeValidationError(w, err)
			return
		}

		lastID, err := storage.CreateStudent(r.Context(), student)
		if err != nil {
			logWriteError("error creating student", err)
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))

		response.WriteJSON(w, http.StatusCreated, response.Mutation{
			ID:      lastID,
			Message: response.MsgCreated,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// Success response (200 OK):
//
//	{ "id": 1, "name": "Test2", "email": "test2@university.edu", "major": "Computer Science", "cgpa": 3.5 }
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — { "message": "Student not found" }
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, ok := lookup(w, r, storage, id)
		if !ok {
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns a JSON array of all students, [] when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Replace handles PUT /api/students/{id}
// Replaces ALL mutable fields of an existing student. The body follows
// the same rules as creation.
//
// Success response (200 OK):
//
//	{ "id": 1, "message": "Student updated successfully" }
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, failed validation, store error
//	404 Not Found    — no student with this id
//
// ─────────────────────────────────────────────────────────────────────────────
func Replace(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("replacing a student", slog.Int64("id", id))

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		student, err := validation.CreateOrReplace(fields)
		if err != nil {
			writeValidationError(w, err)
			return
		}

		if _, ok := lookup(w, r, storage, id); !ok {
			return
		}

		affected, err := storage.ReplaceStudent(r.Context(), id, student)
		if err != nil {
			logWriteError("error replacing student", err, slog.Int64("id", id))
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		// the row can vanish between the lookup and the write
		if affected == 0 {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound())
			return
		}

		slog.Info("student replaced", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Mutation{
			ID:      id,
			Message: response.MsgUpdated,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/students/{id}
// Applies only the supplied fields. Every supplied field is validated and
// every problem is reported at once in "details".
//
// Request body (JSON), any subset of the fields:
//
//	{ "name": "Patched Name", "cgpa": 3.5 }
//
// Success response (200 OK):
//
//	{ "id": 1, "message": "Student updated successfully", "updatedFields": ["name", "cgpa"] }
//
// Error responses:
//
//	400 Bad Request  — { "error": "Validation failed", "details": [...] }
//	                   { "error": "No valid fields provided for update" }
//	                   { "error": "Database error", "details": ["..."] }
//	404 Not Found    — no student with this id
//	500 Internal     — the existence lookup failed
//
// ─────────────────────────────────────────────────────────────────────────────
func Patch(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("patching a student", slog.Int64("id", id))

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		changes, err := validation.Partial(fields)
		if err != nil {
			writeValidationError(w, err)
			return
		}

		if _, ok := lookup(w, r, storage, id); !ok {
			return
		}

		affected, err := storage.PatchStudent(r.Context(), id, changes)
		if err != nil {
			logWriteError("error patching student", err, slog.Int64("id", id))
			response.WriteJSON(w, http.StatusBadRequest, response.DatabaseError(err))
			return
		}
		if affected == 0 {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound())
			return
		}

		updated := validation.ChangedFields(changes)
		slog.Info("student patched",
			slog.Int64("id", id),
			slog.Any("fields", updated))

		response.WriteJSON(w, http.StatusOK, response.Mutation{
			ID:            id,
			Message:       response.MsgUpdated,
			UpdatedFields: updated,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Permanently removes a student record from the database.
//
// Success response (200 OK):
//
//	{ "message": "Student deleted successfully" }
//
// Error responses:
//
//	400 Bad Request  — invalid id
//	404 Not Found    — no student with this id
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if _, ok := lookup(w, r, storage, id); !ok {
			return
		}

		affected, err := storage.DeleteStudent(r.Context(), id)
		if err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}
		if affected == 0 {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound())
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message{Message: response.MsgDeleted})
	}
}

// parseID reads the {id} path segment. It writes a 400 and returns false
// when the segment is not an integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decodeFields reads the JSON object body. It writes a 400 and returns
// false for an empty or malformed body.
func decodeFields(w http.ResponseWriter, r *http.Request) ([]validation.Field, bool) {
	fields, err := validation.DecodeFields(r.Body)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return nil, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return nil, false
	}
	return fields, true
}

// lookup is the existence check run before reads and every mutation.
// It writes a 404 or 500 and returns false when the row cannot be used.
func lookup(w http.ResponseWriter, r *http.Request, store storage.Storage, id int64) (types.Student, bool) {
	student, err := store.GetStudentByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.NotFound())
		return types.Student{}, false
	}
	if err != nil {
		slog.Error("error getting student",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(err))
		return types.Student{}, false
	}
	return student, true
}

// writeValidationError answers 400 with the validation envelope.
func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}

// logWriteError logs a failed write. Duplicate emails are a client
// mistake, not a server fault, so they are logged at warn level.
func logWriteError(msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	if errors.Is(err, storage.ErrDuplicateEmail) {
		slog.Warn(msg, attrs...)
		return
	}
	slog.Error(msg, attrs...)
}
