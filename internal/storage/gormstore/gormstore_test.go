package gormstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{
		StoragePath: filepath.Join(t.TempDir(), "gorm.db"),
		Storage:     config.Storage{Driver: config.DriverGormSQLite},
	}
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

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{Storage: config.Storage{Driver: "mysql"}})
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestMigrateFailureClosesPool(t *testing.T) {
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "gorm.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a view holding the table name makes CREATE TABLE fail
	require.NoError(t, db.Exec("CREATE VIEW students AS SELECT 1 AS id").Error)

	require.Error(t, migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}
