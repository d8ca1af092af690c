package store

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Types is the read-only registry of known type tags.
type Types struct {
	schemas map[string]*Schema
}

// NewTypes builds a registry from schemas. Each schema is validated and
// tags must be unique.
func NewTypes(schemas ...*Schema) (*Types, error) {
	t := &Types{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.schemas[s.Tag]; dup {
			return nil, fmt.Errorf("duplicate tag %q", s.Tag)
		}
		t.schemas[s.Tag] = s
	}
	return t, nil
}

// Lookup returns the schema for tag.
func (t *Types) Lookup(tag string) (*Schema, bool) {
	s, ok := t.schemas[tag]
	return s, ok
}

// Known reports whether tag is in the registry.
func (t *Types) Known(tag string) bool {
	_, ok := t.schemas[tag]
	return ok
}

// Tags returns every known tag, sorted.
func (t *Types) Tags() []string {
	tags := make([]string, 0, len(t.schemas))
	for tag := range t.schemas {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func stringField(name string) Field { return Field{Name: name, Type: FieldTypeString, Default: String("")} }
func intField(name string) Field    { return Field{Name: name, Type: FieldTypeInteger, Default: Integer(0)} }
func floatField(name string) Field  { return Field{Name: name, Type: FieldTypeFloat, Default: Float(0)} }
func listField(name string) Field   { return Field{Name: name, Type: FieldTypeList, Default: List(nil)} }

// DefaultTypes returns the built-in registry of the seven hbnb tags.
func DefaultTypes() *Types {
	t, err := NewTypes(
		NewSchema("BaseModel"),
		NewSchema("User", stringField("email"), stringField("password"), stringField("first_name"), stringField("last_name")),
		NewSchema("State", stringField("name")),
		NewSchema("City", stringField("state_id"), stringField("name")),
		NewSchema("Amenity", stringField("name")),
		NewSchema("Place",
			stringField("city_id"), stringField("user_id"), stringField("name"), stringField("description"),
			intField("number_rooms"), intField("number_bathrooms"), intField("max_guest"), intField("price_by_night"),
			floatField("latitude"), floatField("longitude"),
			listField("amenity_ids"),
		),
		NewSchema("Review", stringField("place_id"), stringField("user_id"), stringField("text")),
	)
	if err != nil {
		panic(fmt.Sprintf("built-in types are invalid: %v", err))
	}
	return t
}

// typesFile is the YAML layout of a types file.
type typesFile struct {
	Types []struct {
		Tag    string `yaml:"tag"`
		Fields []struct {
			Name    string    `yaml:"name"`
			Type    FieldType `yaml:"type"`
			Default yaml.Node `yaml:"default"`
		} `yaml:"fields"`
	} `yaml:"types"`
}

// LoadTypes reads a registry from a YAML types file.
// An empty path returns the built-in registry.
func LoadTypes(path string) (*Types, error) {
	if path == "" {
		return DefaultTypes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading types file: %w", err)
	}
	return ParseTypes(data)
}

// ParseTypes parses the YAML form of a registry.
func ParseTypes(data []byte) (*Types, error) {
	var file typesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing types file: %w", err)
	}
	if len(file.Types) == 0 {
		return nil, errors.New("types file declares no types")
	}

	schemas := make([]*Schema, 0, len(file.Types))
	for _, ft := range file.Types {
		fields := make([]Field, 0, len(ft.Fields))
		for _, ff := range ft.Fields {
			f := Field{Name: ff.Name, Type: ff.Type, Default: ZeroValue(ff.Type)}
			if ff.Default.Kind != 0 {
				var raw any
				if err := ff.Default.Decode(&raw); err != nil {
					return nil, fmt.Errorf("%s.%s: decoding default: %w", ft.Tag, ff.Name, err)
				}
				def, err := f.Coerce(raw)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: default: %w", ft.Tag, ff.Name, err)
				}
				if f.Type == FieldTypeList && def.Kind() != KindList {
					return nil, fmt.Errorf("%s.%s: default must be a list of strings", ft.Tag, ff.Name)
				}
				f.Default = def
			}
			fields = append(fields, f)
		}
		schemas = append(schemas, NewSchema(ft.Tag, fields...))
	}

	return NewTypes(schemas...)
}
