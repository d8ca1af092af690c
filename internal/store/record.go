package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is a single typed entity held by the Store.
// ID, Tag and CreatedAt never change after creation.
type Record struct {
	ID        string
	Tag       string
	CreatedAt time.Time
	UpdatedAt time.Time
	Attrs     map[string]Value

	schema *Schema
}

// Key returns the registry key "Tag.id".
func Key(tag, id string) string {
	return tag + "." + id
}

// Key returns the registry key of r.
func (r *Record) Key() string {
	return Key(r.Tag, r.ID)
}

// Get returns the value of attribute name, falling back to the declared
// default. The second result is false if the attribute is neither set nor declared.
func (r *Record) Get(name string) (Value, bool) {
	if v, ok := r.Attrs[name]; ok {
		return v, true
	}
	if r.schema != nil {
		if f, ok := r.schema.Field(name); ok {
			return f.Default, true
		}
	}
	return Value{}, false
}

// String returns the canonical rendering: [Tag] (id) {attributes}.
// Attributes list id and both timestamps first, then declared attributes in
// declaration order (defaults when unset), then the rest sorted by name.
func (r *Record) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] (%s) {", r.Tag, r.ID)

	fmt.Fprintf(&sb, "%s: %s", quote(AttrID), quote(r.ID))
	fmt.Fprintf(&sb, ", %s: %s", quote(AttrCreatedAt), formatDatetimeRepr(r.CreatedAt))
	fmt.Fprintf(&sb, ", %s: %s", quote(AttrUpdatedAt), formatDatetimeRepr(r.UpdatedAt))

	declared := make(map[string]bool)
	if r.schema != nil {
		for _, f := range r.schema.Fields {
			declared[f.Name] = true
			v, _ := r.Get(f.Name)
			fmt.Fprintf(&sb, ", %s: %s", quote(f.Name), v.Repr())
		}
	}

	extra := make([]string, 0, len(r.Attrs))
	for name := range r.Attrs {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		fmt.Fprintf(&sb, ", %s: %s", quote(name), r.Attrs[name].Repr())
	}

	sb.WriteString("}")
	return sb.String()
}

// formatDatetimeRepr renders t as datetime.datetime(Y, M, D, h, m[, s[, us]]),
// dropping trailing zero seconds and microseconds.
func formatDatetimeRepr(t time.Time) string {
	us := t.Nanosecond() / int(time.Microsecond)
	s := fmt.Sprintf("datetime.datetime(%d, %d, %d, %d, %d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
	switch {
	case us != 0:
		s += fmt.Sprintf(", %d, %d", t.Second(), us)
	case t.Second() != 0:
		s += fmt.Sprintf(", %d", t.Second())
	}
	return s + ")"
}
