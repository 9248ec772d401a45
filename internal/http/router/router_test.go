package router

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage/gormstore"
)

// The router is backend agnostic; run it once on the gorm store.
func newGormRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()
	store, err := gormstore.New(&config.Config{
		StoragePath: filepath.Join(t.TempDir(), "router.db"),
		Storage:     config.Storage{Driver: config.DriverGormSQLite},
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, origins)
}

func TestUnknownMethod(t *testing.T) {
	h := newGormRouter(t, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestPreflightFromFormClient(t *testing.T) {
	h := newGormRouter(t, []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/api/students/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestListOnGormStore(t *testing.T) {
	h := newGormRouter(t, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/students", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
