package console

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want []string
	}{
		{"empty", "", []string{}},
		{"words", "State 1234", []string{"State", "1234"}},
		{"trailing commas", "Place 1234, max_guest, 98", []string{"Place", "1234", "max_guest", "98"}},
		{"only one comma stripped", "a,,", []string{"a,"}},
		{"double quotes", `Place "1234", "name", "My little house"`, []string{"Place", "1234", "name", "My little house"}},
		{"single quotes", `User 1 first_name 'Betty Bar'`, []string{"User", "1", "first_name", "Betty Bar"}},
		{
			"brace literal kept verbatim",
			`Place 1234, {'max_guest': 4, "name": "Loft"}`,
			[]string{"Place", "1234", `{'max_guest': 4, "name": "Loft"}`},
		},
		{
			"text after literal dropped",
			`Place 1234 {'a': 1} trailing`,
			[]string{"Place", "1234", "{'a': 1}"},
		},
		{
			"brace wins over bracket",
			`Place 1 ['x'] {'a': 1}`,
			[]string{"Place", "1", "[x]", "{'a': 1}"},
		},
		{
			"bracket literal",
			`Place 1 amenity_ids ['a', 'b']`,
			[]string{"Place", "1", "amenity_ids", "['a', 'b']"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.arg)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.arg, err)
			}
			if len(tt.want) == 0 {
				if len(got) != 0 {
					t.Errorf("Parse(%q) = %q, want empty", tt.arg, got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParse_UnbalancedQuote(t *testing.T) {
	if _, err := Parse(`State "1234`); err == nil {
		t.Error("Parse() expected error for unbalanced quote")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, word, arg string
	}{
		{"show State 1", "show", "State 1"},
		{"State.all()", "State", ".all()"},
		{"quit", "quit", ""},
		{"all.foo()", "all", ".foo()"},
	}
	for _, tt := range tests {
		word, arg := splitCommand(tt.line)
		if word != tt.word || arg != tt.arg {
			t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", tt.line, word, arg, tt.word, tt.arg)
		}
	}
}

func TestParseVerb(t *testing.T) {
	for _, name := range []string{"create", "show", "destroy", "all", "count", "update"} {
		v, ok := ParseVerb(name)
		if !ok {
			t.Fatalf("ParseVerb(%q) not found", name)
		}
		if v.String() != name {
			t.Errorf("String() = %q, want %q", v.String(), name)
		}
	}

	if _, ok := ParseVerb("quit"); ok {
		t.Error("ParseVerb(quit) should not be a record verb")
	}

	if VerbCreate.Dotted() {
		t.Error("create should not be callable in dotted form")
	}
	if !VerbUpdate.Dotted() {
		t.Error("update should be callable in dotted form")
	}
}
