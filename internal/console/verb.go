package console

// Verb is one of the record commands understood by the shell.
type Verb int

const (
	VerbCreate Verb = iota
	VerbShow
	VerbDestroy
	VerbAll
	VerbCount
	VerbUpdate
)

var verbNames = map[string]Verb{
	"create":  VerbCreate,
	"show":    VerbShow,
	"destroy": VerbDestroy,
	"all":     VerbAll,
	"count":   VerbCount,
	"update":  VerbUpdate,
}

// ParseVerb returns the verb called name.
func ParseVerb(name string) (Verb, bool) {
	v, ok := verbNames[name]
	return v, ok
}

// String returns the command name of v.
func (v Verb) String() string {
	for name, verb := range verbNames {
		if verb == v {
			return name
		}
	}
	return "unknown"
}

// Dotted reports whether v may be called as Tag.verb(args).
// Records can only be created positionally.
func (v Verb) Dotted() bool {
	return v != VerbCreate
}
