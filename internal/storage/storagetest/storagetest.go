// Package storagetest is a conformance suite for storage.Storage
// implementations. Each backend's tests call Run with a function that
// opens a fresh, empty store.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Opener returns an empty store; it should register its own cleanup.
type Opener func(t *testing.T) storage.Storage

// Sample returns a valid student whose email is unique per suffix.
func Sample(suffix string) types.Student {
	return types.Student{
		Name:  "Student " + suffix,
		Email: "s" + suffix + "@university.edu",
		Major: "Computer Science",
		CGPA:  3.5,
	}
}

// Run executes every conformance case against stores built by open.
func Run(t *testing.T, open Opener) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, open(t)) })
	t.Run("IDsAreNotReused", func(t *testing.T) { testIDsAreNotReused(t, open(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, open(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, open(t)) })
	t.Run("ListOrdered", func(t *testing.T) { testListOrdered(t, open(t)) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, open(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, open(t)) })
	t.Run("ReplaceMissing", func(t *testing.T) { testReplaceMissing(t, open(t)) })
	t.Run("Patch", func(t *testing.T) { testPatch(t, open(t)) })
	t.Run("PatchZeroCGPA", func(t *testing.T) { testPatchZeroCGPA(t, open(t)) })
	t.Run("PatchMissing", func(t *testing.T) { testPatchMissing(t, open(t)) })
	t.Run("PatchUnknownField", func(t *testing.T) { testPatchUnknownField(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
}

func testCreateAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	want := Sample("1")

	id, err := s.CreateStudent(ctx, want)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)

	want.ID = id
	assert.Equal(t, want, got)
}

func testIDsAreNotReused(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.CreateStudent(ctx, Sample("1"))
	require.NoError(t, err)

	_, err = s.DeleteStudent(ctx, first)
	require.NoError(t, err)

	second, err := s.CreateStudent(ctx, Sample("2"))
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func testGetMissing(t *testing.T, s storage.Storage) {
	_, err := s.GetStudentByID(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListEmpty(t *testing.T, s storage.Storage) {
	students, err := s.GetStudents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func testListOrdered(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	var ids []int64
	for _, suffix := range []string{"a", "b", "c"} {
		id, err := s.CreateStudent(ctx, Sample(suffix))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	students, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	for i, st := range students {
		assert.Equal(t, ids[i], st.ID)
	}
	assert.Equal(t, "sb@university.edu", students[1].Email)
}

func testDuplicateEmail(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	_, err := s.CreateStudent(ctx, Sample("1"))
	require.NoError(t, err)

	_, err = s.CreateStudent(ctx, Sample("1"))
	require.Error(t, err)

	// a replace that collides with another row fails the same way
	other, err := s.CreateStudent(ctx, Sample("2"))
	require.NoError(t, err)

	_, err = s.ReplaceStudent(ctx, other, Sample("1"))
	require.Error(t, err)

	_, err = s.PatchStudent(ctx, other, []types.Change{{Field: types.FieldEmail, Value: "s1@university.edu"}})
	require.Error(t, err)

	got, err := s.GetStudentByID(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "s2@university.edu", got.Email)
}

func testReplace(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, Sample("1"))
	require.NoError(t, err)

	next := types.Student{Name: "Updated Test", Email: "updatedtest@university.edu", Major: "Math", CGPA: 3.8}
	affected, err := s.ReplaceStudent(ctx, id, next)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	next.ID = id
	assert.Equal(t, next, got)
}

func testReplaceMissing(t *testing.T, s storage.Storage) {
	affected, err := s.ReplaceStudent(context.Background(), 42, Sample("1"))
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func testPatch(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, types.Student{Name: "Patch Test", Email: "patch@test.edu", Major: "Chemistry", CGPA: 3.1})
	require.NoError(t, err)

	affected, err := s.PatchStudent(ctx, id, []types.Change{
		{Field: types.FieldName, Value: "Patched Name"},
		{Field: types.FieldCGPA, Value: 3.5},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.Student{ID: id, Name: "Patched Name", Email: "patch@test.edu", Major: "Chemistry", CGPA: 3.5}, got)
}

func testPatchZeroCGPA(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, Sample("1"))
	require.NoError(t, err)

	_, err = s.PatchStudent(ctx, id, []types.Change{{Field: types.FieldCGPA, Value: 0.0}})
	require.NoError(t, err)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, got.CGPA)
}

func testPatchMissing(t *testing.T, s storage.Storage) {
	affected, err := s.PatchStudent(context.Background(), 42, []types.Change{{Field: types.FieldMajor, Value: "Physics"}})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func testPatchUnknownField(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, Sample("1"))
	require.NoError(t, err)

	_, err = s.PatchStudent(ctx, id, []types.Change{{Field: "id", Value: 7}})
	assert.ErrorIs(t, err, storage.ErrUnknownField)
}

func testDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	id, err := s.CreateStudent(ctx, Sample("1"))
	require.NoError(t, err)

	affected, err := s.DeleteStudent(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = s.GetStudentByID(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	affected, err = s.DeleteStudent(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
