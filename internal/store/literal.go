package store

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pair is one name/value entry of a mapping literal, in source order.
type Pair struct {
	Name  string
	Value any
}

// ErrNotMapping is returned when a literal does not parse as a mapping.
var ErrNotMapping = errors.New("not a mapping literal")

// ParseMapLiteral parses a flow mapping such as {'name': 'Cal', 'max_guest': 4}
// into its entries, preserving order. Both quote styles are accepted.
// A NaN or infinite value (.nan, .inf) makes the literal unusable.
func ParseMapLiteral(text string) ([]Pair, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotMapping
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMapping, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	m := doc.Content[0]
	pairs := make([]Pair, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		var name string
		if err := m.Content[i].Decode(&name); err != nil {
			return nil, fmt.Errorf("%w: key %d: %v", ErrNotMapping, i/2, err)
		}
		var value any
		if err := m.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrNotMapping, name, err)
		}
		if f, ok := value.(float64); ok && !isFinite(f) {
			return nil, fmt.Errorf("%w: value for %q is not a finite number", ErrNotMapping, name)
		}
		pairs = append(pairs, Pair{Name: name, Value: value})
	}
	return pairs, nil
}

// ParseListLiteral parses a flow sequence such as ['a', 'b'] into strings.
// Scalar items that are not strings are kept as their literal text.
func ParseListLiteral(text string) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.TrimSpace(text)), &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, errors.New("not a list literal")
	}

	seq := doc.Content[0]
	items := make([]string, 0, len(seq.Content))
	for _, n := range seq.Content {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("list item at line %d is not a scalar", n.Line)
		}
		items = append(items, n.Value)
	}
	return items, nil
}
