// Package health holds the liveness endpoint.
package health

import (
	"net/http"

	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Ping handles GET /ping and always answers { "message": "pong" }.
func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.Message{Message: "pong"})
	}
}
