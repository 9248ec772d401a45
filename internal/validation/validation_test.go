package validation

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/types"
)

func mustDecode(t *testing.T, body string) []Field {
	t.Helper()
	fields, err := DecodeFields(strings.NewReader(body))
	require.NoError(t, err)
	return fields
}

func validationError(t *testing.T, err error) *Error {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr
}

func TestDecodeFields(t *testing.T) {
	fields := mustDecode(t, `{"name":"A","cgpa":3.5,"email":null,"name":"B"}`)

	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Key)
	assert.JSONEq(t, `"B"`, string(fields[0].Value))
	assert.Equal(t, "cgpa", fields[1].Key)
	assert.Equal(t, "email", fields[2].Key)
	assert.True(t, isNull(fields[2].Value))
}

func TestDecodeFieldsErrors(t *testing.T) {
	_, err := DecodeFields(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)

	_, err = DecodeFields(strings.NewReader(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeFields(strings.NewReader(`{"name":`))
	assert.Error(t, err)

	_, err = DecodeFields(strings.NewReader(`{"name":"x"} garbage`))
	assert.ErrorIs(t, err, ErrTrailingData)

	_, err = DecodeFields(strings.NewReader(`{"name":"x"}{"name":"y"}`))
	assert.ErrorIs(t, err, ErrTrailingData)

	// trailing whitespace is fine
	fields, err := DecodeFields(strings.NewReader("{\"name\":\"x\"}\n  "))
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestParseCGPA(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: `3.5`, want: 3.5},
		{raw: `0`, want: 0},
		{raw: `"3.25"`, want: 3.25},
		{raw: `" 4 "`, want: 4},
		{raw: `"abc"`, wantErr: true},
		{raw: `""`, wantErr: true},
		{raw: `"NaN"`, wantErr: true},
		{raw: `"Inf"`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `[3.5]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCGPA(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateOrReplace(t *testing.T) {
	got, err := CreateOrReplace(mustDecode(t,
		`{"name":"Test2","email":"test2@university.edu","major":"Computer Science","cgpa":3.5}`))
	require.NoError(t, err)

	assert.Equal(t, types.Student{
		Name:  "Test2",
		Email: "test2@university.edu",
		Major: "Computer Science",
		CGPA:  3.5,
	}, got)
}

func TestCreateOrReplaceBoundaries(t *testing.T) {
	thirty := strings.Repeat("x", 30)

	for _, body := range []string{
		`{"name":"` + thirty + `","email":"a@b.co","major":"` + thirty + `","cgpa":0}`,
		`{"name":"N","email":"a@b.co","major":"M","cgpa":4.0}`,
		`{"name":"N","email":"a@b.co","major":"M","cgpa":"2.75"}`,
		// length counts characters, not bytes
		`{"name":"` + strings.Repeat("é", 30) + `","email":"a@b.co","major":"M","cgpa":1}`,
	} {
		_, err := CreateOrReplace(mustDecode(t, body))
		assert.NoError(t, err, body)
	}
}

func TestCreateOrReplaceErrors(t *testing.T) {
	long := strings.Repeat("x", 31)
	longEmail := strings.Repeat("a", 25) + "@uni.edu"

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty object", `{}`, MsgMissingFields},
		{"missing cgpa", `{"name":"N","email":"a@b.co","major":"M"}`, MsgMissingFields},
		{"null cgpa", `{"name":"N","email":"a@b.co","major":"M","cgpa":null}`, MsgMissingFields},
		{"empty name", `{"name":"","email":"a@b.co","major":"M","cgpa":3}`, MsgMissingFields},
		{"numeric major", `{"name":"N","email":"a@b.co","major":5,"cgpa":3}`, MsgMissingFields},
		{"long name", `{"name":"` + long + `","email":"a@b.co","major":"M","cgpa":3}`, MsgNameTooLong},
		{"long email", `{"name":"N","email":"` + longEmail + `","major":"M","cgpa":3}`, MsgEmailTooLong},
		{"long major", `{"name":"N","email":"a@b.co","major":"` + long + `","cgpa":3}`, MsgMajorTooLong},
		{"bad email", `{"name":"N","email":"not-an-email","major":"M","cgpa":3}`, MsgEmailFormat},
		{"email with space", `{"name":"N","email":"a b@c.de","major":"M","cgpa":3}`, MsgEmailFormat},
		{"email with no-break space", `{"name":"N","email":"a\u00a0b@c.de","major":"M","cgpa":3}`, MsgEmailFormat},
		{"email with vertical tab", `{"name":"N","email":"a@b\u000bc.de","major":"M","cgpa":3}`, MsgEmailFormat},
		{"email with ideographic space", `{"name":"N","email":"a@b.d\u3000e","major":"M","cgpa":3}`, MsgEmailFormat},
		{"email with line separator", `{"name":"N","email":"a\u2028b@c.de","major":"M","cgpa":3}`, MsgEmailFormat},
		{"email with byte order mark", `{"name":"N","email":"\ufeffa@c.de","major":"M","cgpa":3}`, MsgEmailFormat},
		{"cgpa too high", `{"name":"N","email":"a@b.co","major":"M","cgpa":4.01}`, MsgCGPARange},
		{"cgpa negative", `{"name":"N","email":"a@b.co","major":"M","cgpa":-0.5}`, MsgCGPARange},
		{"cgpa not a number", `{"name":"N","email":"a@b.co","major":"M","cgpa":"high"}`, MsgCGPANotNumber},

		// priority: lengths before the email pattern before cgpa
		{"major length beats email format", `{"name":"N","email":"bad","major":"` + long + `","cgpa":9}`, MsgMajorTooLong},
		{"email format beats cgpa", `{"name":"N","email":"bad","major":"M","cgpa":9}`, MsgEmailFormat},
		{"name length first", `{"name":"` + long + `","email":"` + longEmail + `","major":"M","cgpa":3}`, MsgNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateOrReplace(mustDecode(t, tt.body))
			verr := validationError(t, err)
			assert.Equal(t, tt.want, verr.Message)
			assert.Empty(t, verr.Details)
		})
	}
}

func TestPartial(t *testing.T) {
	changes, err := Partial(mustDecode(t, `{"name":"Patched Name","cgpa":"3.5"}`))
	require.NoError(t, err)

	assert.Equal(t, []types.Change{
		{Field: types.FieldName, Value: "Patched Name"},
		{Field: types.FieldCGPA, Value: 3.5},
	}, changes)
	assert.Equal(t, []string{"name", "cgpa"}, ChangedFields(changes))
}

func TestPartialAccumulatesErrors(t *testing.T) {
	body := `{
		"age": 20,
		"name": "` + strings.Repeat("x", 31) + `",
		"email": "bad",
		"major": null,
		"cgpa": 5.0
	}`

	_, err := Partial(mustDecode(t, body))
	verr := validationError(t, err)

	assert.Equal(t, MsgValidationFailed, verr.Message)
	assert.Equal(t, []string{
		"'age' is not a valid field",
		"'name' must be 30 characters or less",
		"Invalid email format",
		"'major' cannot be null",
		MsgPatchCGPARange,
	}, verr.Details)
}

func TestPartialFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"cgpa too high", `{"cgpa":5.0}`, []string{"CGPA must be between 0.0 and 4.0"}},
		{"cgpa not a number", `{"cgpa":"x"}`, []string{"'cgpa' must be a number"}},
		{"name not a string", `{"name":12}`, []string{"'name' must be a string"}},
		{"empty major", `{"major":""}`, []string{"'major' cannot be empty"}},
		{"long bad email", `{"email":"` + strings.Repeat("a", 31) + `"}`, []string{
			"'email' must be 30 characters or less",
			"Invalid email format",
		}},
		{"unknown next to valid", `{"name":"ok","id":3}`, []string{"'id' is not a valid field"}},
		{"email with no-break space", `{"email":"a\u00a0b@c.de"}`, []string{"Invalid email format"}},
		{"email with vertical tab", `{"email":"a@b\u000bc.de"}`, []string{"Invalid email format"}},
		{"email with ideographic space", `{"email":"a@b.d\u3000e"}`, []string{"Invalid email format"}},
		{"email with paragraph separator", `{"email":"a\u2029b@c.de"}`, []string{"Invalid email format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Partial(mustDecode(t, tt.body))
			verr := validationError(t, err)
			assert.Equal(t, tt.want, verr.Details)
		})
	}
}

func TestPartialNoFields(t *testing.T) {
	_, err := Partial(mustDecode(t, `{}`))
	assert.ErrorIs(t, err, ErrNoFields)
	assert.Equal(t, "No valid fields provided for update", err.Error())
}
