package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindList
)

// String returns the field type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return string(FieldTypeInteger)
	case KindFloat:
		return string(FieldTypeFloat)
	case KindList:
		return string(FieldTypeList)
	default:
		return string(FieldTypeString)
	}
}

// Value is an attribute value: a string, an integer, a float or a list of strings.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	list []string
}

// String wraps s as a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer wraps n as an integer Value.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// Float wraps f as a float Value.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// List wraps items as a list Value. The slice is copied.
func List(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string held by v, or "" for other kinds.
func (v Value) Str() string { return v.str }

// Int returns the integer held by v, or 0 for other kinds.
func (v Value) Int() int64 { return v.num }

// Float returns the float held by v, or 0 for other kinds.
func (v Value) Float() float64 { return v.flt }

// Items returns a copy of the list held by v, or nil for other kinds.
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp
}

// Interface returns v as a plain Go value (string, int64, float64 or []string).
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	case KindList:
		return v.Items()
	default:
		return v.str
	}
}

// Equal reports whether v and o hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return v.str == o.str
	}
}

// Text renders v the way it reads when converted to a plain string:
// strings as-is, numbers in their shortest form, lists as a literal.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	default:
		return v.Repr()
	}
}

// Repr renders v as a literal: quoted strings, bare numbers, bracketed lists.
func (v Value) Repr() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return formatFloat(v.flt)
	case KindList:
		parts := make([]string, len(v.list))
		for i, s := range v.list {
			parts[i] = quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return quote(v.str)
	}
}

// MarshalJSON encodes floats with a decimal point or exponent so they decode as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	case KindFloat:
		if math.IsInf(v.flt, 0) || math.IsNaN(v.flt) {
			return nil, fmt.Errorf("cannot encode non-finite float %v", v.flt)
		}
		return []byte(formatFloat(v.flt)), nil
	case KindList:
		items := v.list
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	default:
		return json.Marshal(v.str)
	}
}

// ValueOf converts an already-typed Go value into a Value.
// Values outside the closed variant (bools, maps, mixed lists) are kept
// as their literal text in the string variant.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case int:
		return Integer(int64(t))
	case int64:
		return Integer(t)
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t))
		}
		return Integer(int64(t))
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case json.Number:
		return numberValue(t.String())
	case []string:
		return List(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return String(literalText(x))
			}
			items = append(items, s)
		}
		return List(items)
	case nil:
		return String("None")
	default:
		return String(literalText(x))
	}
}

// numberValue picks integer or float from the textual form of a JSON number.
func numberValue(s string) Value {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Integer(n)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return String(s)
	}
	return Float(f)
}

// literalText renders arbitrary decoded data (bools, maps, nested lists) as text.
func literalText(x any) string {
	switch t := x.(type) {
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

// formatFloat renders f the shortest way that still reads back as a float:
// "1.0", "37.77", "1e+16", "1.5e-05".
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quote renders s as a single-quoted literal, switching to double quotes
// when s contains a single quote but no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
