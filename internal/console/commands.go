package console

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matsen/hbnb/internal/store"
)

// tokens parses arg, reporting unknown syntax when the quoting is unbalanced.
func (c *Console) tokens(arg string) ([]string, bool) {
	args, err := Parse(arg)
	if err != nil {
		c.log.Debug("tokenizing failed", "line", c.line, "error", err)
		c.unknownSyntax()
		return nil, false
	}
	return args, true
}

// resolve applies the shared validation order (missing tag, unknown tag,
// missing id, unknown id) and returns the addressed record.
func (c *Console) resolve(args []string) (*store.Record, bool) {
	switch {
	case len(args) == 0:
		c.say(MsgClassMissing)
		return nil, false
	case !c.types.Known(args[0]):
		c.say(MsgClassUnknown)
		return nil, false
	case len(args) == 1:
		c.say(MsgIDMissing)
		return nil, false
	}

	r, err := c.store.Fetch(args[0], args[1])
	if err != nil {
		c.say(MsgNotFound)
		return nil, false
	}
	return r, true
}

// persist writes the registry after a successful mutation.
func (c *Console) persist() error {
	if err := c.store.Save(); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	return nil
}

func (c *Console) create(arg string) error {
	args, ok := c.tokens(arg)
	if !ok {
		return nil
	}
	if len(args) == 0 {
		c.say(MsgClassMissing)
		return nil
	}
	if !c.types.Known(args[0]) {
		c.say(MsgClassUnknown)
		return nil
	}

	id, err := c.store.Create(args[0])
	if err != nil {
		return err
	}
	c.say(id)
	return c.persist()
}

func (c *Console) show(arg string) error {
	args, ok := c.tokens(arg)
	if !ok {
		return nil
	}
	if r, ok := c.resolve(args); ok {
		c.say(r.String())
	}
	return nil
}

func (c *Console) destroy(arg string) error {
	args, ok := c.tokens(arg)
	if !ok {
		return nil
	}
	r, ok := c.resolve(args)
	if !ok {
		return nil
	}

	if err := c.store.Delete(r.Tag, r.ID); err != nil {
		return err
	}
	return c.persist()
}

func (c *Console) all(arg string) error {
	args, ok := c.tokens(arg)
	if !ok {
		return nil
	}

	tag := ""
	if len(args) > 0 {
		if !c.types.Known(args[0]) {
			c.say(MsgClassUnknown)
			return nil
		}
		tag = args[0]
	}

	items := slices.Collect(c.store.All(tag))
	c.say(store.List(items).Repr())
	return nil
}

// count does not check the tag against the registry; unknown tags count 0.
func (c *Console) count(arg string) error {
	args, ok := c.tokens(arg)
	if !ok {
		return nil
	}
	if len(args) == 0 {
		c.say(MsgClassMissing)
		return nil
	}

	c.say(fmt.Sprint(c.store.Count(args[0])))
	return nil
}

// update sets one attribute (update Tag id name value) or every entry of a
// mapping literal (update Tag id {'name': value, ...}).
func (c *Console) update(arg string) error {
	args, ok := c.tokens(arg)
	if !ok {
		return nil
	}
	r, ok := c.resolve(args)
	if !ok {
		return nil
	}

	switch len(args) {
	case 2:
		c.say(MsgAttributeMissing)
		return nil

	case 3:
		pairs, err := store.ParseMapLiteral(args[2])
		if err != nil {
			c.say(MsgValueMissing)
			return nil
		}
		skipped, err := c.store.BulkUpdate(r.Tag, r.ID, pairs)
		if err != nil {
			return err
		}
		for _, name := range skipped {
			c.log.Warn("ignoring reserved attribute", "key", r.Key(), "attribute", name)
		}

	default:
		err := c.store.Update(r.Tag, r.ID, args[2], args[3])
		if errors.Is(err, store.ErrReservedAttribute) {
			c.log.Warn("ignoring reserved attribute", "key", r.Key(), "attribute", args[2])
			return nil
		}
		if err != nil {
			return err
		}
	}

	return c.persist()
}
