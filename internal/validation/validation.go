// Package validation checks student payloads before they reach storage.
//
// There are two entry points sharing one rule set:
//
//   - CreateOrReplace: every field is required. The first broken rule is
//     reported, in a fixed priority order.
//   - Partial: only the supplied fields are checked, unknown keys are
//     rejected, and ALL broken rules are reported together so a client can
//     fix everything from a single response.
//
// The rules themselves live on types.Student as validate:"..." tags and
// are evaluated with go-playground/validator.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Messages returned to API clients.
const (
	MsgMissingFields    = "Missing required fields. Please provide name, email, major, and cgpa"
	MsgNameTooLong      = "Name must be 30 characters or less."
	MsgEmailTooLong     = "email must be 30 characters or less."
	MsgMajorTooLong     = "major must be 30 characters or less."
	MsgEmailFormat      = "Invalid email format (must be user@domain.com.)"
	MsgCGPARange        = "CGPA must be between 0 and 4.0"
	MsgCGPANotNumber    = "CGPA must be a number"
	MsgValidationFailed = "Validation failed"

	MsgPatchCGPARange   = "CGPA must be between 0.0 and 4.0"
	MsgPatchEmailFormat = "Invalid email format"
)

// MaxFieldLength is the column width of every text field.
const MaxFieldLength = 30

// emailPattern accepts local@domain.tld with no whitespace and exactly one @
// before the domain. Whitespace covers \v, the Unicode space separators
// (U+00A0, U+3000, ...), U+2028/U+2029 and the BOM, not only RE2's \s.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{feff}@]+@[^\s\v\p{Z}\x{feff}@]+\.[^\s\v\p{Z}\x{feff}@]+$`)

// KnownFields is the set of keys a partial update may carry.
var KnownFields = map[string]bool{
	types.FieldName:  true,
	types.FieldEmail: true,
	types.FieldMajor: true,
	types.FieldCGPA:  true,
}

// maxLengths lists the fields that have a registered length limit.
var maxLengths = map[string]int{
	types.FieldName:  MaxFieldLength,
	types.FieldEmail: MaxFieldLength,
	types.FieldMajor: MaxFieldLength,
}

// Error is a validation failure. Message is always set; Details carries
// one entry per broken rule for partial updates.
type Error struct {
	Message string
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// ErrNoFields is returned by Partial when the payload holds nothing to apply.
var ErrNoFields = &Error{Message: "No valid fields provided for update"}

// validate is shared by every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names ("name", "cgpa") instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("student_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register student_email: %v", err))
	}

	return v
}

// rule pairs a field/tag combination reported by the validator with the
// message the client sees. The slice order is the reporting priority.
type rule struct {
	field   string
	tags    []string
	message string
}

var createRules = []rule{
	{types.FieldName, []string{"required"}, MsgMissingFields},
	{types.FieldEmail, []string{"required"}, MsgMissingFields},
	{types.FieldMajor, []string{"required"}, MsgMissingFields},
	{types.FieldName, []string{"max"}, MsgNameTooLong},
	{types.FieldEmail, []string{"max"}, MsgEmailTooLong},
	{types.FieldMajor, []string{"max"}, MsgMajorTooLong},
	{types.FieldEmail, []string{"student_email"}, MsgEmailFormat},
	{types.FieldCGPA, []string{"gte", "lte"}, MsgCGPARange},
}

// CreateOrReplace validates a full student record. All four fields must be
// present and non-null, and the text fields must be non-empty strings.
// On success the normalized record is returned with ID left at zero.
func CreateOrReplace(fields []Field) (types.Student, error) {
	values := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		if !isNull(f.Value) {
			values[f.Key] = f.Value
		}
	}

	name, okName := stringValue(values, types.FieldName)
	email, okEmail := stringValue(values, types.FieldEmail)
	major, okMajor := stringValue(values, types.FieldMajor)
	rawCGPA, okCGPA := values[types.FieldCGPA]

	if !okName || !okEmail || !okMajor || !okCGPA {
		return types.Student{}, &Error{Message: MsgMissingFields}
	}

	cgpa, err := ParseCGPA(rawCGPA)
	if err != nil {
		return types.Student{}, &Error{Message: MsgCGPANotNumber}
	}

	student := types.Student{
		Name:  name,
		Email: email,
		Major: major,
		CGPA:  cgpa,
	}

	if err := validate.Struct(student); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return types.Student{}, fmt.Errorf("CreateOrReplace: %w", err)
		}
		return types.Student{}, &Error{Message: firstBrokenRule(fieldErrs)}
	}

	return student, nil
}

// firstBrokenRule picks the highest-priority message among the failures.
func firstBrokenRule(errs validator.ValidationErrors) string {
	broken := make(map[string]string, len(errs))
	for _, e := range errs {
		broken[e.Field()] = e.Tag()
	}

	for _, r := range createRules {
		tag, ok := broken[r.field]
		if !ok {
			continue
		}
		for _, t := range r.tags {
			if t == tag {
				return r.message
			}
		}
	}

	// A tag with no registered message still fails the request.
	return fmt.Sprintf("field %s is invalid", errs[0].Field())
}

// stringValue returns a non-empty string member of values.
func stringValue(values map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Partial validates the fields of a PATCH payload against KnownFields.
// Every field is checked and every violation is collected; nothing is
// returned for application unless the whole payload is clean. The returned
// changes keep the request order.
func Partial(fields []Field) ([]types.Change, error) {
	var details []string
	changes := make([]types.Change, 0, len(fields))

	for _, f := range fields {
		if !KnownFields[f.Key] {
			details = append(details, fmt.Sprintf("'%s' is not a valid field", f.Key))
			continue
		}
		if isNull(f.Value) {
			details = append(details, fmt.Sprintf("'%s' cannot be null", f.Key))
			continue
		}

		before := len(details)
		var value any

		switch f.Key {
		case types.FieldCGPA:
			cgpa, err := ParseCGPA(f.Value)
			if err != nil {
				details = append(details, fmt.Sprintf("'%s' must be a number", f.Key))
				continue
			}
			if err := validate.Var(cgpa, "gte=0,lte=4"); err != nil {
				details = append(details, MsgPatchCGPARange)
			}
			value = cgpa

		default:
			var s string
			if err := json.Unmarshal(f.Value, &s); err != nil {
				details = append(details, fmt.Sprintf("'%s' must be a string", f.Key))
				continue
			}
			if s == "" {
				details = append(details, fmt.Sprintf("'%s' cannot be empty", f.Key))
			}
			if limit, ok := maxLengths[f.Key]; ok {
				if err := validate.Var(s, fmt.Sprintf("max=%d", limit)); err != nil {
					details = append(details, fmt.Sprintf("'%s' must be %d characters or less", f.Key, limit))
				}
			}
			if f.Key == types.FieldEmail && s != "" {
				if err := validate.Var(s, "student_email"); err != nil {
					details = append(details, MsgPatchEmailFormat)
				}
			}
			value = s
		}

		if len(details) == before {
			changes = append(changes, types.Change{Field: f.Key, Value: value})
		}
	}

	if len(details) > 0 {
		return nil, &Error{Message: MsgValidationFailed, Details: details}
	}
	if len(changes) == 0 {
		return nil, ErrNoFields
	}

	return changes, nil
}

// ChangedFields lists the field names of changes in order.
func ChangedFields(changes []types.Change) []string {
	names := make([]string, 0, len(changes))
	for _, c := range changes {
		names = append(names, c.Field)
	}
	return names
}
