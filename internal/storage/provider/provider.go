// Package provider opens the storage backend named in the config.
// It lives apart from package storage because the backends themselves
// import storage for its interface and sentinel errors.
package provider

import (
	"fmt"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/gormstore"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

// Open returns a ready-to-use store for cfg.Storage.Driver. A failed open
// returns a nil interface, never a typed nil pointer.
func Open(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverGormSQLite, config.DriverPostgres:
		s, err := gormstore.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("provider.Open: unknown storage driver %q", cfg.Storage.Driver)
	}
}
