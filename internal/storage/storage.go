// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care which database they are
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB and
//     select it in the config file. Zero handler changes.
//
//   - Writing tests = open any backend on a temp file; every backend runs
//     the same conformance suite in storagetest.
//
// Every method operates on exactly one row and runs exactly one SQL
// statement. Nothing spans several rows, so there are no transactions.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	// ErrNotFound is the explicit "absent" marker returned by GetStudentByID.
	ErrNotFound = errors.New("student not found")

	// ErrDuplicateEmail is wrapped into write errors caused by the unique
	// index on email. The driver message is kept next to it.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrUnknownField is returned by PatchStudent for a change whose field
	// has no matching column.
	ErrUnknownField = errors.New("unknown field")
)

// Storage is the database contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface.
type Storage interface {
	// CreateStudent inserts a new student record and returns the
	// generated primary-key ID.
	CreateStudent(ctx context.Context, student types.Student) (int64, error)

	// GetStudents returns every student ordered by id.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if no row matches.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// ReplaceStudent overwrites name, email, major and cgpa of one row.
	// Returns the number of rows affected (0 when the id does not exist).
	ReplaceStudent(ctx context.Context, id int64, student types.Student) (int64, error)

	// PatchStudent applies only the given changes to one row.
	// Returns the number of rows affected (0 when the id does not exist).
	PatchStudent(ctx context.Context, id int64, changes []types.Change) (int64, error)

	// DeleteStudent removes one row permanently.
	// Returns the number of rows affected (0 when the id does not exist).
	DeleteStudent(ctx context.Context, id int64) (int64, error)

	// Close releases the underlying connection pool.
	Close() error
}

// Columns maps every patchable field to its column name. Backends build
// SET clauses only from this map, never from client-supplied text.
var Columns = map[string]string{
	types.FieldName:  "name",
	types.FieldEmail: "email",
	types.FieldMajor: "major",
	types.FieldCGPA:  "cgpa",
}
