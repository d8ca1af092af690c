// Package store holds the typed record registry behind the hbnb shell:
// the per-tag schemas, the records themselves, their JSON codec and the
// file-backed Store.
package store

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FieldType represents the primitive type of a declared attribute.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeList    FieldType = "list" // list of strings
)

// validFieldTypes is the set of recognized field types.
var validFieldTypes = map[FieldType]bool{
	FieldTypeString:  true,
	FieldTypeInteger: true,
	FieldTypeFloat:   true,
	FieldTypeList:    true,
}

// validIdentifier matches tag and attribute names.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Reserved attribute names. These are owned by the store and can never be
// set through Update or BulkUpdate.
const (
	AttrID        = "id"
	AttrClass     = "__class__"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
)

// IsReserved reports whether name is one of the store-owned attributes.
func IsReserved(name string) bool {
	switch name {
	case AttrID, AttrClass, AttrCreatedAt, AttrUpdatedAt:
		return true
	}
	return false
}

// Field defines a single declared attribute of a tag.
type Field struct {
	Name    string
	Type    FieldType
	Default Value
}

// Schema is the declared attribute set of one type tag.
type Schema struct {
	Tag    string
	Fields []Field // declaration order
	index  map[string]int
}

// NewSchema builds a schema for tag from fields, in declaration order.
func NewSchema(tag string, fields ...Field) *Schema {
	s := &Schema{Tag: tag, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// Field returns the declared attribute called name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Validate checks that the schema is valid.
// It returns an error describing the first validation failure.
func (s *Schema) Validate() error {
	if s.Tag == "" {
		return fmt.Errorf("tag is required")
	}
	if !validIdentifier.MatchString(s.Tag) {
		return fmt.Errorf("tag %q is not a valid identifier", s.Tag)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if !validIdentifier.MatchString(f.Name) {
			return fmt.Errorf("%s: field name %q is not a valid identifier", s.Tag, f.Name)
		}
		if IsReserved(f.Name) || f.Name == ColumnExtra {
			return fmt.Errorf("%s: field name %q is reserved", s.Tag, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate field %q", s.Tag, f.Name)
		}
		seen[f.Name] = true

		if !validFieldTypes[f.Type] {
			return fmt.Errorf("%s: field %q has invalid type %q", s.Tag, f.Name, f.Type)
		}
		if f.Default.Kind().String() != string(f.Type) {
			return fmt.Errorf("%s: field %q default is %s, want %s", s.Tag, f.Name, f.Default.Kind(), f.Type)
		}
	}

	return nil
}

// ZeroValue returns the default value for a field type.
func ZeroValue(t FieldType) Value {
	switch t {
	case FieldTypeInteger:
		return Integer(0)
	case FieldTypeFloat:
		return Float(0)
	case FieldTypeList:
		return List(nil)
	default:
		return String("")
	}
}

// CoercionError reports a value that could not be converted to its declared type.
type CoercionError struct {
	Attr string
	Type FieldType
	Raw  string
	Err  error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("attribute %q: cannot convert %q to %s: %v", e.Attr, e.Raw, e.Type, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// CoerceRaw converts a raw input token to the field's declared type.
// Lists accept a bracketed literal; any other text becomes a one-element list.
func (f Field) CoerceRaw(raw string) (Value, error) {
	switch f.Type {
	case FieldTypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, &CoercionError{Attr: f.Name, Type: f.Type, Raw: raw, Err: err}
		}
		return Integer(n), nil

	case FieldTypeFloat:
		x, err := parseFinite(raw)
		if err != nil {
			return Value{}, &CoercionError{Attr: f.Name, Type: f.Type, Raw: raw, Err: err}
		}
		return Float(x), nil

	case FieldTypeList:
		if strings.HasPrefix(strings.TrimSpace(raw), "[") {
			items, err := ParseListLiteral(raw)
			if err != nil {
				return Value{}, &CoercionError{Attr: f.Name, Type: f.Type, Raw: raw, Err: err}
			}
			return List(items), nil
		}
		return List([]string{raw}), nil

	default:
		return String(raw), nil
	}
}

// Coerce converts an already-typed value to the field's declared type.
// Only string, integer and float fields are coerced; list fields keep the
// value as given.
func (f Field) Coerce(x any) (Value, error) {
	v := ValueOf(x)
	fail := func(err error) (Value, error) {
		return Value{}, &CoercionError{Attr: f.Name, Type: f.Type, Raw: v.Text(), Err: err}
	}

	switch f.Type {
	case FieldTypeString:
		if b, ok := x.(bool); ok {
			return String(literalText(b)), nil
		}
		return String(v.Text()), nil

	case FieldTypeInteger:
		if b, ok := x.(bool); ok {
			if b {
				return Integer(1), nil
			}
			return Integer(0), nil
		}
		switch v.Kind() {
		case KindInteger:
			return v, nil
		case KindFloat:
			if !isFinite(v.Float()) {
				return fail(errNonFinite)
			}
			t := math.Trunc(v.Float())
			if t >= maxInt64Float || t < -maxInt64Float {
				return fail(strconv.ErrRange)
			}
			return Integer(int64(t)), nil
		case KindString:
			n, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
			if err != nil {
				return fail(err)
			}
			return Integer(n), nil
		default:
			return fail(fmt.Errorf("unsupported %s value", v.Kind()))
		}

	case FieldTypeFloat:
		if b, ok := x.(bool); ok {
			if b {
				return Float(1), nil
			}
			return Float(0), nil
		}
		switch v.Kind() {
		case KindFloat:
			if !isFinite(v.Float()) {
				return fail(errNonFinite)
			}
			return v, nil
		case KindInteger:
			return Float(float64(v.Int())), nil
		case KindString:
			f, err := parseFinite(v.Str())
			if err != nil {
				return fail(err)
			}
			return Float(f), nil
		default:
			return fail(fmt.Errorf("unsupported %s value", v.Kind()))
		}

	default:
		return v, nil
	}
}

// parseFinite parses a float and rejects infinities and NaN, which JSON cannot hold.
func parseFinite(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if !isFinite(f) {
		return 0, errNonFinite
	}
	return f, nil
}

// errNonFinite rejects NaN and infinities, which JSON cannot hold.
var errNonFinite = errors.New("non-finite float")

// maxInt64Float is 2^63, the first float above the int64 range.
const maxInt64Float = 1 << 63

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
