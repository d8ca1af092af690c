package store

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// setupTestStore creates an empty store backed by a file in a temp directory,
// with a fixed clock and sequential ids.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.json")
	s := NewStore(path, DefaultTypes(), nil)

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	s.now = func() time.Time {
		clock = clock.Add(1500 * time.Microsecond)
		return clock
	}
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func mustCreate(t *testing.T, s *Store, tag string) string {
	t.Helper()
	id, err := s.Create(tag)
	if err != nil {
		t.Fatalf("Create(%q): %v", tag, err)
	}
	return id
}

func TestStoreCreate(t *testing.T) {
	s := setupTestStore(t)

	id := mustCreate(t, s, "State")
	if id != "id-1" {
		t.Errorf("id = %q, want id-1", id)
	}

	r, err := s.Fetch("State", id)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if r.Key() != "State.id-1" {
		t.Errorf("Key() = %q", r.Key())
	}
	if !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Errorf("created_at %v != updated_at %v", r.CreatedAt, r.UpdatedAt)
	}
	if len(r.Attrs) != 0 {
		t.Errorf("new record should have no attributes, got %v", r.Attrs)
	}

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("Create should not persist")
	}
}

func TestStoreCreate_UnknownTag(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Create("MyModel")
	if !errors.Is(err, ErrUnknownTag) {
		t.Errorf("error = %v, want ErrUnknownTag", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStoreCreate_RetriesTakenID(t *testing.T) {
	s := setupTestStore(t)
	ids := []string{"dup", "dup", "fresh"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := mustCreate(t, s, "User")
	second := mustCreate(t, s, "User")
	if first != "dup" || second != "fresh" {
		t.Errorf("ids = %q, %q, want dup, fresh", first, second)
	}
}

func TestStoreFetchDelete(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "City")

	if _, err := s.Fetch("State", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch with wrong tag: error = %v, want ErrNotFound", err)
	}

	if err := s.Delete("City", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Fetch("City", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch after Delete: error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("City", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: error = %v, want ErrNotFound", err)
	}
}

func TestStoreAllAndCount(t *testing.T) {
	s := setupTestStore(t)

	if got := s.Count("State"); got != 0 {
		t.Errorf("Count(State) = %d, want 0", got)
	}

	a := mustCreate(t, s, "State")
	b := mustCreate(t, s, "State")
	c := mustCreate(t, s, "City")

	if got := s.Count("State"); got != 2 {
		t.Errorf("Count(State) = %d, want 2", got)
	}
	if got := s.Count("MyModel"); got != 0 {
		t.Errorf("Count(MyModel) = %d, want 0", got)
	}

	states := slices.Collect(s.All("State"))
	if len(states) != 2 {
		t.Fatalf("All(State) returned %d items, want 2", len(states))
	}
	for _, id := range []string{a, b} {
		r, _ := s.Fetch("State", id)
		if !slices.Contains(states, r.String()) {
			t.Errorf("All(State) missing %s", r.Key())
		}
	}

	everything := s.All("")
	if n := len(slices.Collect(everything)); n != 3 {
		t.Errorf("All(\"\") returned %d items, want 3", n)
	}

	// The sequence is restartable and reflects later changes.
	if err := s.Delete("City", c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := len(slices.Collect(everything)); n != 2 {
		t.Errorf("second range returned %d items, want 2", n)
	}
}

func TestStoreUpdate(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "Place")
	before, _ := s.Fetch("Place", id)
	created := before.CreatedAt

	tests := []struct {
		attr string
		raw  string
		want Value
	}{
		{"max_guest", "98", Integer(98)},
		{"latitude", "7.5", Float(7.5)},
		{"name", "Loft", String("Loft")},
		{"amenity_ids", `["a1", "a2"]`, List([]string{"a1", "a2"})},
		{"nickname", "42", String("42")},
	}

	for _, tt := range tests {
		if err := s.Update("Place", id, tt.attr, tt.raw); err != nil {
			t.Fatalf("Update(%s, %q): %v", tt.attr, tt.raw, err)
		}
		r, _ := s.Fetch("Place", id)
		if got := r.Attrs[tt.attr]; !got.Equal(tt.want) {
			t.Errorf("%s = %s (%s), want %s (%s)", tt.attr, got.Repr(), got.Kind(), tt.want.Repr(), tt.want.Kind())
		}
	}

	r, _ := s.Fetch("Place", id)
	if !r.UpdatedAt.After(created) {
		t.Errorf("updated_at %v should be after created_at %v", r.UpdatedAt, created)
	}
	if !r.CreatedAt.Equal(created) {
		t.Error("created_at should not change")
	}
}

func TestStoreUpdate_CoercionFailure(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "Place")
	if err := s.Update("Place", id, "max_guest", "4"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	r, _ := s.Fetch("Place", id)
	stamp := r.UpdatedAt

	err := s.Update("Place", id, "max_guest", "many")
	if !IsCoercionError(err) {
		t.Fatalf("error = %v, want *CoercionError", err)
	}
	if got := r.Attrs["max_guest"]; !got.Equal(Integer(4)) {
		t.Errorf("max_guest = %s, want 4", got.Repr())
	}
	if !r.UpdatedAt.Equal(stamp) {
		t.Error("failed update should not touch updated_at")
	}
}

func TestStoreUpdate_Reserved(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "User")

	for _, attr := range []string{"id", "__class__", "created_at", "updated_at"} {
		if err := s.Update("User", id, attr, "x"); !errors.Is(err, ErrReservedAttribute) {
			t.Errorf("Update(%s): error = %v, want ErrReservedAttribute", attr, err)
		}
	}
	if _, err := s.Fetch("User", id); err != nil {
		t.Errorf("record should still be addressable: %v", err)
	}
}

func TestStoreUpdate_NotFound(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Update("User", "nope", "email", "a@b.c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestStoreBulkUpdate(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "Place")

	skipped, err := s.BulkUpdate("Place", id, []Pair{
		{Name: "max_guest", Value: "12"},
		{Name: "latitude", Value: 3},
		{Name: "name", Value: 7},
		{Name: "amenity_ids", Value: []any{"x"}},
		{Name: "rating", Value: 4.5},
		{Name: "id", Value: "hijack"},
	})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if !slices.Equal(skipped, []string{"id"}) {
		t.Errorf("skipped = %v, want [id]", skipped)
	}

	r, _ := s.Fetch("Place", id)
	want := map[string]Value{
		"max_guest":   Integer(12),
		"latitude":    Float(3),
		"name":        String("7"),
		"amenity_ids": List([]string{"x"}),
		"rating":      Float(4.5),
	}
	for name, v := range want {
		if got := r.Attrs[name]; !got.Equal(v) {
			t.Errorf("%s = %s (%s), want %s (%s)", name, got.Repr(), got.Kind(), v.Repr(), v.Kind())
		}
	}
	if r.ID != id {
		t.Errorf("id changed to %q", r.ID)
	}
}

func TestStoreBulkUpdate_AllOrNothing(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "Place")

	_, err := s.BulkUpdate("Place", id, []Pair{
		{Name: "name", Value: "Loft"},
		{Name: "max_guest", Value: "lots"},
	})
	if !IsCoercionError(err) {
		t.Fatalf("error = %v, want *CoercionError", err)
	}

	r, _ := s.Fetch("Place", id)
	if len(r.Attrs) != 0 {
		t.Errorf("failed bulk update should change nothing, got %v", r.Attrs)
	}
}

func TestStoreBulkUpdate_NonFinite(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
	}{
		{"declared float NaN", []Pair{{Name: "name", Value: "Loft"}, {Name: "latitude", Value: math.NaN()}}},
		{"undeclared inf", []Pair{{Name: "name", Value: "Loft"}, {Name: "zzz", Value: math.Inf(1)}}},
		{"integer out of range", []Pair{{Name: "name", Value: "Loft"}, {Name: "max_guest", Value: 1e30}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestStore(t)
			id := mustCreate(t, s, "Place")
			before, _ := s.Fetch("Place", id)
			updatedAt := before.UpdatedAt

			_, err := s.BulkUpdate("Place", id, tt.pairs)
			if !IsCoercionError(err) {
				t.Fatalf("error = %v, want *CoercionError", err)
			}

			r, _ := s.Fetch("Place", id)
			if len(r.Attrs) != 0 {
				t.Errorf("rejected bulk update should change nothing, got %v", r.Attrs)
			}
			if !r.UpdatedAt.Equal(updatedAt) {
				t.Errorf("UpdatedAt moved to %v", r.UpdatedAt)
			}
			if err := s.Save(); err != nil {
				t.Errorf("Save after rejected update: %v", err)
			}
		})
	}
}

func TestStoreSaveLoad_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	placeID := mustCreate(t, s, "Place")
	mustCreate(t, s, "State")
	userID := mustCreate(t, s, "User")

	if err := s.Update("Place", placeID, "max_guest", "98"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update("Place", placeID, "latitude", "37.0"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := s.BulkUpdate("User", userID, []Pair{{Name: "email", Value: "a@b.c"}, {Name: "age", Value: 30}}); err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Open(s.Path(), DefaultTypes(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !slices.Equal(loaded.Keys(), s.Keys()) {
		t.Fatalf("Keys() = %v, want %v", loaded.Keys(), s.Keys())
	}
	for _, key := range s.Keys() {
		want := s.objects[key]
		got := loaded.objects[key]
		if got.String() != want.String() {
			t.Errorf("%s:\n got %s\nwant %s", key, got.String(), want.String())
		}
		if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
			t.Errorf("%s: timestamps differ", key)
		}
	}

	r, _ := loaded.Fetch("Place", placeID)
	if got := r.Attrs["latitude"]; got.Kind() != KindFloat {
		t.Errorf("latitude kind = %s, want float", got.Kind())
	}
}

func TestStoreSave_NoTempFilesLeft(t *testing.T) {
	s := setupTestStore(t)
	mustCreate(t, s, "Amenity")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStoreLoad_MissingFile(t *testing.T) {
	s := setupTestStore(t)
	mustCreate(t, s, "State")

	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after loading a missing file", s.Len())
	}
}

func TestStoreLoad_Invalid(t *testing.T) {
	s := setupTestStore(t)
	mustCreate(t, s, "State")

	if err := os.WriteFile(s.Path(), []byte(`{"MyModel.1": {"__class__": "MyModel", "id": "1"}}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Load(); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Load error = %v, want ErrUnknownTag", err)
	}
	if s.Len() != 1 {
		t.Errorf("failed Load should keep the registry, Len() = %d", s.Len())
	}

	if err := os.WriteFile(s.Path(), []byte(`not json`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Load(); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestRecordString(t *testing.T) {
	s := setupTestStore(t)
	id := mustCreate(t, s, "State")

	r, _ := s.Fetch("State", id)
	want := "[State] (id-1) {'id': 'id-1', " +
		"'created_at': datetime.datetime(2024, 3, 1, 12, 0, 0, 1500), " +
		"'updated_at': datetime.datetime(2024, 3, 1, 12, 0, 0, 1500), " +
		"'name': ''}"
	if got := r.String(); got != want {
		t.Errorf("String() =\n %s\nwant\n %s", got, want)
	}

	r.Attrs["zeta"] = Integer(1)
	r.Attrs["alpha"] = String("a")
	r.Attrs["name"] = String("California")
	got := r.String()
	if !strings.HasSuffix(got, "'name': 'California', 'alpha': 'a', 'zeta': 1}") {
		t.Errorf("String() = %s", got)
	}
}

func TestFormatDatetimeRepr(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2017, 9, 28, 21, 3, 54, 52298000, time.Local), "datetime.datetime(2017, 9, 28, 21, 3, 54, 52298)"},
		{time.Date(2017, 9, 28, 21, 3, 54, 0, time.Local), "datetime.datetime(2017, 9, 28, 21, 3, 54)"},
		{time.Date(2017, 9, 28, 21, 3, 0, 0, time.Local), "datetime.datetime(2017, 9, 28, 21, 3)"},
	}
	for _, tt := range tests {
		if got := formatDatetimeRepr(tt.t); got != tt.want {
			t.Errorf("formatDatetimeRepr = %s, want %s", got, tt.want)
		}
	}
}
