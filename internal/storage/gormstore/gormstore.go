// Package gormstore implements storage.Storage on top of gorm, so the API
// can run against PostgreSQL (or SQLite through gorm's own dialector)
// without touching the handlers.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// studentRow is the gorm model for the students table.
type studentRow struct {
	ID    int64   `gorm:"primaryKey;autoIncrement"`
	Name  string  `gorm:"size:30;not null"`
	Email string  `gorm:"size:30;not null;uniqueIndex"`
	Major string  `gorm:"size:30;not null"`
	CGPA  float64 `gorm:"column:cgpa;not null"`
}

func (studentRow) TableName() string { return "students" }

func (r studentRow) toStudent() types.Student {
	return types.Student{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Major: r.Major,
		CGPA:  r.CGPA,
	}
}

// Store is a gorm-backed storage.Storage.
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New opens the database selected by cfg.Storage.Driver and makes sure
// the students table exists.
func New(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Storage.DSN)
	case config.DriverGormSQLite:
		dialector = gormsqlite.Open(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("gormstore.New: unsupported driver %q", cfg.Storage.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// unique violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore.New: open db: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("gormstore.New: create table: %w", err)
	}

	return &Store{db: db}, nil
}

// migrate creates or updates the students table and closes the pool if
// that fails.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&studentRow{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return err
	}
	return nil
}

// Close closes the pool behind the gorm handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	row := studentRow{
		Name:  student.Name,
		Email: student.Email,
		Major: student.Major,
		CGPA:  student.CGPA,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", translate(err))
	}
	return row.ID, nil
}

func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	var rows []studentRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	students := make([]types.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	// Find with a limit instead of First: a miss is a normal outcome here
	// and First would treat it as an error.
	var rows []studentRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	if len(rows) == 0 {
		return types.Student{}, storage.ErrNotFound
	}
	return rows[0].toStudent(), nil
}

func (s *Store) ReplaceStudent(ctx context.Context, id int64, student types.Student) (int64, error) {
	// A map (not a struct) so zero values such as cgpa 0 are written too.
	result := s.db.WithContext(ctx).
		Model(&studentRow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":  student.Name,
			"email": student.Email,
			"major": student.Major,
			"cgpa":  student.CGPA,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("ReplaceStudent: %w", translate(result.Error))
	}
	return result.RowsAffected, nil
}

func (s *Store) PatchStudent(ctx context.Context, id int64, changes []types.Change) (int64, error) {
	if len(changes) == 0 {
		return 0, errors.New("PatchStudent: no changes")
	}

	updates := make(map[string]any, len(changes))
	for _, c := range changes {
		column, ok := storage.Columns[c.Field]
		if !ok {
			return 0, fmt.Errorf("PatchStudent: %w: %q", storage.ErrUnknownField, c.Field)
		}
		updates[column] = c.Value
	}

	result := s.db.WithContext(ctx).
		Model(&studentRow{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("PatchStudent: %w", translate(result.Error))
	}
	return result.RowsAffected, nil
}

func (s *Store) DeleteStudent(ctx context.Context, id int64) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&studentRow{}, id)
	if result.Error != nil {
		return 0, fmt.Errorf("DeleteStudent: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateEmail, err.Error())
	}
	return err
}
