package store

import (
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Store owns the in-memory registry of records and the file it is persisted to.
// It is not safe for concurrent use.
type Store struct {
	path    string
	types   *Types
	objects map[string]*Record
	log     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewStore creates an empty Store backed by the file at path.
// A nil logger uses slog.Default().
func NewStore(path string, types *Types, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:    path,
		types:   types,
		objects: make(map[string]*Record),
		log:     logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Open creates a Store and loads the file at path, if present.
func Open(path string, types *Types, logger *slog.Logger) (*Store, error) {
	s := NewStore(path, types, logger)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Types returns the type registry the store validates against.
func (s *Store) Types() *Types {
	return s.types
}

// Len returns the number of live records.
func (s *Store) Len() int {
	return len(s.objects)
}

// Keys returns every registry key, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// timestamp returns the current time at microsecond precision.
func (s *Store) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

// Create inserts a new empty record of the given tag and returns its id.
// It does not persist.
func (s *Store) Create(tag string) (string, error) {
	schema, ok := s.types.Lookup(tag)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	id := s.newID()
	for {
		if _, taken := s.objects[Key(tag, id)]; !taken {
			break
		}
		id = s.newID()
	}

	ts := s.timestamp()
	r := &Record{
		ID:        id,
		Tag:       tag,
		CreatedAt: ts,
		UpdatedAt: ts,
		Attrs:     make(map[string]Value),
		schema:    schema,
	}
	s.objects[r.Key()] = r

	s.log.Debug("record created", "key", r.Key())
	return id, nil
}

// Fetch returns the record stored under tag.id.
func (s *Store) Fetch(tag, id string) (*Record, error) {
	r, ok := s.objects[Key(tag, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Key(tag, id))
	}
	return r, nil
}

// Delete removes the record stored under tag.id.
func (s *Store) Delete(tag, id string) error {
	key := Key(tag, id)
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(s.objects, key)

	s.log.Debug("record deleted", "key", key)
	return nil
}

// records yields the records matching tag in key order; an empty tag matches all.
func (s *Store) records(tag string) iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, key := range s.Keys() {
			r, ok := s.objects[key]
			if !ok {
				continue
			}
			if tag != "" && r.Tag != tag {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// All yields the canonical rendering of every record matching tag.
// An empty tag matches every record. The sequence can be ranged over
// repeatedly and reflects the registry at the time each range starts.
func (s *Store) All(tag string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for r := range s.records(tag) {
			if !yield(r.String()) {
				return
			}
		}
	}
}

// Count returns the number of records with the given tag.
// Unknown tags count zero.
func (s *Store) Count(tag string) int {
	n := 0
	for _, r := range s.objects {
		if r.Tag == tag {
			n++
		}
	}
	return n
}

// Update sets one attribute from a raw input token. Declared attributes are
// converted to their declared type; anything else is stored as the raw string.
// A failed conversion returns a *CoercionError and leaves the record unchanged.
func (s *Store) Update(tag, id, attr, raw string) error {
	r, err := s.Fetch(tag, id)
	if err != nil {
		return err
	}
	if IsReserved(attr) {
		return fmt.Errorf("%w: %s", ErrReservedAttribute, attr)
	}

	v := String(raw)
	if f, ok := r.schema.Field(attr); ok {
		if v, err = f.CoerceRaw(raw); err != nil {
			return err
		}
	}

	r.Attrs[attr] = v
	s.touch(r)
	return nil
}

// BulkUpdate applies every pair in order. Declared string, integer and float
// attributes are converted; everything else is stored as given. All pairs
// are converted before any is applied, so a failure changes nothing.
// Reserved names are skipped and reported in the returned slice.
// NaN and infinities are rejected with a *CoercionError.
func (s *Store) BulkUpdate(tag, id string, pairs []Pair) (skipped []string, err error) {
	r, err := s.Fetch(tag, id)
	if err != nil {
		return nil, err
	}

	values := make([]Value, len(pairs))
	for i, p := range pairs {
		if IsReserved(p.Name) {
			skipped = append(skipped, p.Name)
			continue
		}
		f, ok := r.schema.Field(p.Name)
		if !ok || f.Type == FieldTypeList {
			values[i] = ValueOf(p.Value)
			if values[i].Kind() == KindFloat && !isFinite(values[i].Float()) {
				return nil, &CoercionError{Attr: p.Name, Type: FieldTypeFloat, Raw: values[i].Text(), Err: errNonFinite}
			}
			continue
		}
		if values[i], err = f.Coerce(p.Value); err != nil {
			return nil, err
		}
	}

	for i, p := range pairs {
		if IsReserved(p.Name) {
			continue
		}
		r.Attrs[p.Name] = values[i]
	}
	s.touch(r)
	return skipped, nil
}

// touch refreshes UpdatedAt, never moving it before CreatedAt.
func (s *Store) touch(r *Record) {
	ts := s.timestamp()
	if ts.Before(r.CreatedAt) {
		ts = r.CreatedAt
	}
	r.UpdatedAt = ts
}

// Save rewrites the backing file with the whole registry.
func (s *Store) Save() error {
	data, err := Marshal(s.objects)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}

	s.log.Debug("registry saved", "path", s.path, "records", len(s.objects))
	return nil
}

// Load replaces the registry with the contents of the backing file.
// A missing file leaves the registry empty. On error the registry is unchanged.
func (s *Store) Load() error {
	data, err := readFile(s.path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.path, err)
	}
	if data == nil {
		s.objects = make(map[string]*Record)
		s.log.Debug("no registry file, starting empty", "path", s.path)
		return nil
	}

	records, err := Unmarshal(data, s.types)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.path, err)
	}
	s.objects = records

	s.log.Debug("registry loaded", "path", s.path, "records", len(records))
	return nil
}
