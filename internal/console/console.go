// Package console implements the hbnb command interpreter: it reads lines,
// normalizes the positional and Tag.verb(args) syntaxes into one dispatch
// path and runs the record commands against a store.
package console

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/matsen/hbnb/internal/store"
)

// DefaultPrompt is printed before each line is read.
const DefaultPrompt = "(hbnb) "

// maxLineCapacity is the maximum length of an input line (1MB).
const maxLineCapacity = 1024 * 1024

// Messages reported to the operator.
const (
	MsgClassMissing     = "** class name missing **"
	MsgClassUnknown     = "** class doesn't exist **"
	MsgIDMissing        = "** instance id missing **"
	MsgNotFound         = "** no instance found **"
	MsgAttributeMissing = "** attribute name missing **"
	MsgValueMissing     = "** value missing **"
	unknownSyntaxPrefix = "*** Unknown syntax: "
)

// callPattern matches the argument group of Tag.verb(args).
var callPattern = regexp.MustCompile(`\((.*?)\)`)

// Console runs commands against a Store and writes results to out.
type Console struct {
	store  *store.Store
	types  *store.Types
	out    io.Writer
	prompt string
	log    *slog.Logger

	line string // line being executed, echoed on unknown syntax
}

// Option configures a Console.
type Option func(*Console)

// WithPrompt sets the prompt printed before each line.
func WithPrompt(prompt string) Option {
	return func(c *Console) { c.prompt = prompt }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) { c.log = logger }
}

// New creates a Console over st that writes to out.
func New(st *store.Store, out io.Writer, opts ...Option) *Console {
	c := &Console{
		store:  st,
		types:  st.Types(),
		out:    out,
		prompt: DefaultPrompt,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run reads and executes lines from in until quit, EOF or end of input.
// It returns a non-nil error only when a command fails in a way the
// operator cannot recover from at the prompt: a value that cannot be
// converted to its declared type, or a failed write of the data file.
func (c *Console) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineCapacity)

	for {
		fmt.Fprint(c.out, c.prompt)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			_, err := c.Execute("EOF")
			return err
		}

		stop, err := c.Execute(scanner.Text())
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Execute runs a single line. It reports whether the shell should stop.
func (c *Console) Execute(line string) (stop bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, "?") {
		line = "help " + line[1:]
	}
	c.line = line

	word, arg := splitCommand(line)
	switch word {
	case "quit":
		return true, nil
	case "EOF":
		fmt.Fprintln(c.out)
		return true, nil
	case "help":
		c.help(arg)
		return false, nil
	}

	if v, ok := ParseVerb(word); ok {
		return false, c.dispatch(v, arg)
	}
	return false, c.dotted(line)
}

// splitCommand splits line into its leading identifier and the rest.
func splitCommand(line string) (word, arg string) {
	i := 0
	for i < len(line) && isIdentByte(line[i]) {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func isIdentByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// dispatch runs the handler for v.
func (c *Console) dispatch(v Verb, arg string) error {
	switch v {
	case VerbCreate:
		return c.create(arg)
	case VerbShow:
		return c.show(arg)
	case VerbDestroy:
		return c.destroy(arg)
	case VerbAll:
		return c.all(arg)
	case VerbCount:
		return c.count(arg)
	case VerbUpdate:
		return c.update(arg)
	default:
		return fmt.Errorf("unhandled verb %d", v)
	}
}

// dotted handles Tag.verb(args) by rewriting it to "verb Tag args".
func (c *Console) dotted(line string) error {
	if dot := strings.Index(line, "."); dot >= 0 {
		tag, rest := line[:dot], line[dot+1:]
		if m := callPattern.FindStringSubmatchIndex(rest); m != nil {
			name := rest[:m[0]]
			payload := rest[m[2]:m[3]]
			if v, ok := ParseVerb(name); ok && v.Dotted() {
				return c.dispatch(v, tag+" "+payload)
			}
		}
	}
	c.unknownSyntax()
	return nil
}

func (c *Console) unknownSyntax() {
	fmt.Fprintln(c.out, unknownSyntaxPrefix+c.line)
}

func (c *Console) say(msg string) {
	fmt.Fprintln(c.out, msg)
}
