// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, validation, and storage can all import types without
// depending on each other.
package types

// Student represents one row of the students table.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  controls how the field appears when encoded to JSON.
//     The names match the column names and the request payload keys.
//
//  2. validate:"..." rules checked by the go-playground/validator package
//     whenever a full record is created or replaced. student_email is a
//     custom tag registered by the validation package.
type Student struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"  validate:"required,max=30"`
	Email string  `json:"email" validate:"required,max=30,student_email"`
	Major string  `json:"major" validate:"required,max=30"`
	CGPA  float64 `json:"cgpa"  validate:"gte=0,lte=4"`
}

// Change is a single field assignment produced by a partial update.
// Field is always one of the Field* constants below; Value is a string
// for the text fields and a float64 for cgpa.
type Change struct {
	Field string
	Value any
}

// Field names accepted in request payloads. They double as column names.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldMajor = "major"
	FieldCGPA  = "cgpa"
)
