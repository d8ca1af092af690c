package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp layouts. Encoding always writes six fractional digits; decoding
// also accepts timestamps without a fractional part.
const (
	TimestampLayout      = "2006-01-02T15:04:05.000000"
	timestampParseLayout = "2006-01-02T15:04:05.999999999"
)

// FormatTimestamp renders t as YYYY-MM-DDTHH:MM:SS.ffffff.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp written by FormatTimestamp in local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(timestampParseLayout, s, time.Local)
}

// Encode converts r into its plain attribute map: every attribute plus id,
// the encoded timestamps and the __class__ tag.
func Encode(r *Record) map[string]any {
	m := make(map[string]any, len(r.Attrs)+4)
	for name, v := range r.Attrs {
		m[name] = v
	}
	m[AttrID] = r.ID
	m[AttrCreatedAt] = FormatTimestamp(r.CreatedAt)
	m[AttrUpdatedAt] = FormatTimestamp(r.UpdatedAt)
	m[AttrClass] = r.Tag
	return m
}

// Decode rebuilds a record from its attribute map. The __class__ field
// selects the schema; values other than the timestamps are copied verbatim.
func Decode(m map[string]any, types *Types) (*Record, error) {
	tag, ok := m[AttrClass].(string)
	if !ok {
		return nil, fmt.Errorf("missing %s field", AttrClass)
	}
	schema, ok := types.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	id, ok := m[AttrID].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("missing %s field", AttrID)
	}

	r := &Record{ID: id, Tag: tag, Attrs: make(map[string]Value), schema: schema}
	for name, raw := range m {
		switch name {
		case AttrClass, AttrID:
			continue
		case AttrCreatedAt, AttrUpdatedAt:
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected string, got %T", name, raw)
			}
			ts, err := ParseTimestamp(s)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
			if name == AttrCreatedAt {
				r.CreatedAt = ts
			} else {
				r.UpdatedAt = ts
			}
		default:
			r.Attrs[name] = ValueOf(raw)
		}
	}

	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		return nil, fmt.Errorf("record %s is missing a timestamp", Key(tag, id))
	}
	return r, nil
}

// Marshal encodes a set of records as one JSON object keyed by registry key.
func Marshal(records map[string]*Record) ([]byte, error) {
	doc := make(map[string]map[string]any, len(records))
	for key, r := range records {
		doc[key] = Encode(r)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return data, nil
}

// Unmarshal decodes the JSON object produced by Marshal.
// Numbers keep their integer or float form.
func Unmarshal(data []byte, types *Types) (map[string]*Record, error) {
	var doc map[string]map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}

	records := make(map[string]*Record, len(doc))
	for key, m := range doc {
		r, err := Decode(m, types)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		records[key] = r
	}
	return records, nil
}
