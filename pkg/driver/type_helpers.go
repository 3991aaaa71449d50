package driver

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// maxListSize is the largest list PlainValue keeps when sanitizing.
const maxListSize = 128

// TypeConversionError represents an error during type conversion from database types.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsString safely converts an interface{} to string.
// Returns the string and true if successful, empty string and false otherwise.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// MustString converts an interface{} to string or returns an error.
func MustString(v any, field string) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), field)
	}
	return s, nil
}

// toStringSlice accepts both []string and the []any lists the driver returns.
// A nil value is an empty slice.
func toStringSlice(v any, field string) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return s, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, err := MustString(item, field)
			if err != nil {
				return nil, err
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, NewTypeConversionError("[]string", fmt.Sprintf("%T", v), field)
	}
}

// PlainValue converts a value returned by the driver into maps, slices and
// scalars. Nodes and relationships become their property maps, paths become
// alternating lists of them and temporal values become ISO strings. When
// sanitize is set, lists longer than 128 elements and map entries holding
// them are dropped; the returned bool is false for a dropped value.
func PlainValue(v any, sanitize bool) (any, bool) {
	switch val := v.(type) {
	case dbtype.Node:
		return plainMap(val.Props, sanitize), true
	case dbtype.Relationship:
		return plainMap(val.Props, sanitize), true
	case dbtype.Path:
		out := make([]any, 0, len(val.Nodes)+len(val.Relationships))
		for i, node := range val.Nodes {
			out = append(out, plainMap(node.Props, sanitize))
			if i < len(val.Relationships) {
				out = append(out, val.Relationships[i].Type)
			}
		}
		return out, true
	case map[string]any:
		return plainMap(val, sanitize), true
	case []any:
		if sanitize && len(val) > maxListSize {
			return nil, false
		}
		out := make([]any, 0, len(val))
		for _, item := range val {
			if plain, ok := PlainValue(item, sanitize); ok {
				out = append(out, plain)
			}
		}
		return out, true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return val, true
	}
}

func plainMap(m map[string]any, sanitize bool) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		if plain, ok := PlainValue(value, sanitize); ok {
			out[key] = plain
		}
	}
	return out
}
