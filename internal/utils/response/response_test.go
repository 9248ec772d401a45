package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/validation"
)

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rr, http.StatusCreated, Mutation{ID: 7, Message: MsgCreated}))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7,"message":"Student added successfully"}`, rr.Body.String())
}

func TestErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"general", GeneralError(errors.New("boom")), `{"error":"boom"}`},
		{"validation single", ValidationError(&validation.Error{Message: "Name must be 30 characters or less."}),
			`{"error":"Name must be 30 characters or less."}`},
		{"validation details", ValidationError(&validation.Error{Message: "Validation failed", Details: []string{"Invalid email format"}}),
			`{"error":"Validation failed","details":["Invalid email format"]}`},
		{"database", DatabaseError(errors.New("UNIQUE constraint failed: students.email")),
			`{"error":"Database error","details":["UNIQUE constraint failed: students.email"]}`},
		{"not found", NotFound(), `{"message":"Student not found"}`},
		{"patch result", Mutation{ID: 1, Message: MsgUpdated, UpdatedFields: []string{"name"}},
			`{"id":1,"message":"Student updated successfully","updatedFields":["name"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			require.NoError(t, WriteJSON(rr, http.StatusOK, tt.body))
			assert.JSONEq(t, tt.want, rr.Body.String())
		})
	}
}
