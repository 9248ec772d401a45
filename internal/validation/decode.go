package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrNotObject is returned by DecodeFields when the body is valid JSON
// but not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// ErrTrailingData is returned by DecodeFields when anything other than
// whitespace follows the object.
var ErrTrailingData = errors.New("request body must contain a single JSON object")

// Field is one key/value pair of a request body, kept in the order the
// client sent it. Value is left undecoded so each rule can decide how to
// interpret it.
type Field struct {
	Key   string
	Value json.RawMessage
}

// DecodeFields reads a single JSON object from r and returns its members
// in request order. A repeated key keeps its first position and its last
// value. An empty body yields io.EOF so callers can tell it apart from
// malformed JSON.
func DecodeFields(r io.Reader) ([]Field, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	fields := make([]Field, 0, 4)
	seen := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
		// Object keys are always strings inside a '{' delimiter.
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}

		if i, ok := seen[key]; ok {
			fields[i].Value = value
			continue
		}
		seen[key] = len(fields)
		fields = append(fields, Field{Key: key, Value: value})
	}

	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object end: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}

	return fields, nil
}

// isNull reports whether a raw JSON value is the literal null.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ParseCGPA converts a raw JSON value into a grade point average.
// Both a JSON number (3.5) and a numeric string ("3.5") are accepted.
// Anything else, including NaN and infinities, is an error: a value that
// cannot be read as a number is never treated as zero.
func ParseCGPA(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return f, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return 0, fmt.Errorf("cgpa: expected number or numeric string, got %s", string(trimmed))
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("cgpa: %q is not a number", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cgpa: %q is not a finite number", s)
	}

	return f, nil
}
