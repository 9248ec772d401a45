// Package router assembles the HTTP handler tree: routes on a standard
// library ServeMux, wrapped in the middleware stack. main and the
// end-to-end tests build the server through the same function.
package router

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/http/handlers/health"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// New registers every route against storage and returns the wrapped handler.
//
// Route table:
//
//	GET    /ping                → liveness check
//	POST   /api/students        → create a new student
//	GET    /api/students        → list all students
//	GET    /api/students/{id}   → get one student by ID
//	PUT    /api/students/{id}   → replace a student
//	PATCH  /api/students/{id}   → update some fields of a student
//	DELETE /api/students/{id}   → delete a student
func New(storage storage.Storage, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", health.Ping())

	mux.HandleFunc("POST /api/students", student.New(storage))
	mux.HandleFunc("GET /api/students", student.GetList(storage))
	mux.HandleFunc("GET /api/students/{id}", student.GetByID(storage))
	mux.HandleFunc("PUT /api/students/{id}", student.Replace(storage))
	mux.HandleFunc("PATCH /api/students/{id}", student.Patch(storage))
	mux.HandleFunc("DELETE /api/students/{id}", student.Delete(storage))

	// Innermost first: CORS answers preflights before routing, Recoverer
	// sits inside Logger so a recovered panic is logged as a 500.
	var handler http.Handler = mux
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.Logger(handler)
	handler = middleware.RequestID(handler)

	return handler
}
