// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql;
// its Error type is also used to recognise constraint violations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// compile-time check that SQLite satisfies the interface
var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	// SQLite allows a single writer at a time; one connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	// CREATE TABLE IF NOT EXISTS is idempotent, safe to run on every
	// startup.
	//
	// Schema:
	//   id    — AUTOINCREMENT so ids of deleted rows are never handed out again
	//   email — UNIQUE, the store is what enforces one record per address
	//   cgpa  — REAL, the 0.0–4.0 range is checked before writing
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL,
			email TEXT    NOT NULL UNIQUE,
			major TEXT    NOT NULL,
			cgpa  REAL    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts a new row into the students table.
//
// Values are always bound through ? placeholders. The database engine
// treats them as pure data, never as SQL syntax.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO students (name, email, major, cgpa) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, student.Name, student.Email, student.Major, student.CGPA)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", translate(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentByID fetches exactly one student row matched by primary key.
//
// QueryRow does NOT report a missing row by itself; the error surfaces
// only when Scan is called, as sql.ErrNoRows.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, email, major, cgpa FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student

	err = stmt.QueryRowContext(ctx, id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Major,
		&student.CGPA,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudents returns all student rows as a slice, ordered by id.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, email, major, cgpa FROM students ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the JSON encoding is [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Major,
			&student.CGPA,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ReplaceStudent overwrites every mutable column of one row.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) ReplaceStudent(ctx context.Context, id int64, student types.Student) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE students SET name = ?, email = ?, major = ?, cgpa = ? WHERE id = ?",
	)
	if err != nil {
		return 0, fmt.Errorf("ReplaceStudent: prepare: %w", err)
	}
	defer stmt.Close()

	// argument order matches the ? order: name, email, major, cgpa, id
	result, err := stmt.ExecContext(ctx, student.Name, student.Email, student.Major, student.CGPA, id)
	if err != nil {
		return 0, fmt.Errorf("ReplaceStudent: exec: %w", translate(err))
	}

	return rowsAffected("ReplaceStudent", result)
}

// ─────────────────────────────────────────────────────────────────────────────
// PatchStudent updates only the supplied columns of one row.
//
// The SET clause is assembled from storage.Columns, so the only text
// that reaches the SQL string is a fixed column name; every value is
// still a bound parameter.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) PatchStudent(ctx context.Context, id int64, changes []types.Change) (int64, error) {
	if len(changes) == 0 {
		return 0, errors.New("PatchStudent: no changes")
	}

	setClauses := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)

	for _, c := range changes {
		column, ok := storage.Columns[c.Field]
		if !ok {
			return 0, fmt.Errorf("PatchStudent: %w: %q", storage.ErrUnknownField, c.Field)
		}
		setClauses = append(setClauses, column+" = ?")
		args = append(args, c.Value)
	}
	args = append(args, id)

	query := "UPDATE students SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"

	stmt, err := s.Db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("PatchStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("PatchStudent: exec: %w", translate(err))
	}

	return rowsAffected("PatchStudent", result)
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteStudent removes a student row by primary key.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) DeleteStudent(ctx context.Context, id int64) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM students WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("DeleteStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("DeleteStudent: exec: %w", err)
	}

	return rowsAffected("DeleteStudent", result)
}

func rowsAffected(op string, result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}

// translate marks unique-constraint failures with storage.ErrDuplicateEmail
// while keeping the driver message.
func translate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateEmail, sqliteErr.Error())
	}
	return err
}
