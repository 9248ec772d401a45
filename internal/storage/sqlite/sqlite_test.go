package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/storagetest"
)

// newTestStore opens a store on a fresh file under t.TempDir().
func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "test.db")}
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return newTestStore(t)
	})
}

func TestDuplicateEmailIsMarked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateStudent(ctx, storagetest.Sample("1"))
	require.NoError(t, err)

	_, err = s.CreateStudent(ctx, storagetest.Sample("1"))
	require.ErrorIs(t, err, storage.ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := &config.Config{StoragePath: path}

	first, err := New(cfg)
	require.NoError(t, err)
	id, err := first.CreateStudent(context.Background(), storagetest.Sample("1"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// reopening keeps the table and its rows
	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	got, err := second.GetStudentByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "s1@university.edu", got.Email)
}

func TestNewFailsOnMissingDirectory(t *testing.T) {
	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "missing", "test.db")}
	_, err := New(cfg)
	assert.Error(t, err)
}
