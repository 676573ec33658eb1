package world

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/nathoo/fabula/engine/describe"
	"github.com/nathoo/fabula/engine/impact"
	"github.com/nathoo/fabula/engine/requirement"
	"github.com/nathoo/fabula/engine/tags"
	"github.com/nathoo/fabula/types"
)

// compiler accumulates every compile error so one load reports them all.
type compiler struct {
	errs []error
}

func (c *compiler) fail(where string, err error) {
	c.errs = append(c.errs, fmt.Errorf("%s: %w", where, err))
}

func (c *compiler) requirement(where, src string) requirement.Expr {
	if src == "" {
		return nil
	}
	e, err := requirement.Parse(src)
	if err != nil {
		c.fail(where, err)
		return nil
	}
	return e
}

func (c *compiler) impacts(where, src string) []impact.Impact {
	out, err := impact.ParseList(src)
	if err != nil {
		c.fail(where, err)
		return nil
	}
	return out
}

func (c *compiler) node(where, text, requires, imp string, limit int, children []types.DescriptorDef) *describe.Node {
	if limit < 0 {
		c.fail(where, fmt.Errorf("negative limit %d", limit))
		limit = 0
	}
	n := &describe.Node{
		Text:     text,
		Requires: c.requirement(where, requires),
		Impacts:  c.impacts(where, imp),
		Limit:    limit,
	}
	for i, d := range children {
		n.Children = append(n.Children, c.descriptor(fmt.Sprintf("%s/descriptor[%d]", where, i), d))
	}
	return n
}

func (c *compiler) descriptor(where string, d types.DescriptorDef) *describe.Node {
	n := c.node(where, d.Text, d.Requires, d.Impact, d.Limit, d.Descriptors)
	corr, ok := describe.ParseCorrelation(d.Correlation)
	if !ok {
		c.fail(where, fmt.Errorf("unknown correlation %q", d.Correlation))
	}
	n.Correlation = corr
	return n
}

func (c *compiler) handlers(where string, defs []types.HandlerDef) []*Handler {
	var out []*Handler
	for i, h := range defs {
		at := fmt.Sprintf("%s/on[%d]", where, i)
		if h.Event == "" {
			c.fail(at, errors.New("handler has no event name"))
		}
		out = append(out, &Handler{
			Event: h.Event,
			Desc:  c.node(at, "", h.Requires, h.Impact, 0, nil),
		})
	}
	return out
}

func (c *compiler) entity(kind Kind, d types.EntityDef) *Entity {
	where := fmt.Sprintf("%s %q", kind, d.Key)
	if d.Key == "" {
		where = fmt.Sprintf("%s %q", kind, d.Title)
	}
	e := &Entity{
		Key:    d.Key,
		Kind:   kind,
		Title:  d.Title,
		Tags:   tags.New(d.Tags...),
		Desc:   c.node(where, d.Description, d.Requires, d.Impact, d.Limit, d.Descriptors),
		Parent: NoParent,
	}
	for i, cd := range d.Combinations {
		at := fmt.Sprintf("%s/combination[%d]", where, i)
		e.Combinations = append(e.Combinations, &Combination{
			With: cd.With,
			Desc: c.node(at, cd.Text, cd.Requires, cd.Impact, cd.Limit, cd.Descriptors),
		})
	}
	e.Handlers = c.handlers(where, d.Handlers)
	return e
}

// Build compiles defs into a world. Every requirement and impact string is
// compiled once here; any compile or registration error fails the build,
// and all of them are reported together. The focus is left unset.
func Build(defs *types.Defs, opts ...Option) (*World, error) {
	w := New(opts...)
	c := &compiler{}

	register := func(e *Entity) {
		if err := w.Register(e); err != nil {
			c.errs = append(c.errs, err)
		}
	}

	locs := make([]*Entity, len(defs.Locations))
	for i, ld := range defs.Locations {
		locs[i] = c.entity(Location, ld.EntityDef)
		register(locs[i])
	}
	for _, id := range defs.Items {
		register(c.entity(Item, id))
	}

	for i, ld := range defs.Locations {
		loc := locs[i]
		if ld.Parent != "" {
			parent := w.Resolve(ld.Parent)
			if parent == nil || parent.Kind != Location {
				c.fail(fmt.Sprintf("location %q", ld.Key), fmt.Errorf("parent %q is not a location", ld.Parent))
			} else {
				loc.Parent = parent.ID
				parent.Locations = append(parent.Locations, loc.ID)
			}
		}
		for _, idef := range ld.Interactions {
			in := c.entity(Interaction, idef)
			in.Parent = loc.ID
			register(in)
			if in.ID < len(w.entities) && w.entities[in.ID] == in {
				loc.Interactions = append(loc.Interactions, in.ID)
			}
		}
	}

	p := w.player
	for _, t := range defs.Player.Tags {
		p.Tags.Add(t)
	}
	for _, key := range defs.Player.Items {
		if item := w.Resolve(key); item == nil || item.Kind != Item {
			c.fail("player", fmt.Errorf("starting item %q is not an item", key))
			continue
		}
		p.Items.Put(key)
	}
	p.Handlers = c.handlers("player", defs.Player.Handlers)

	if len(c.errs) > 0 {
		return nil, oops.In("world").With("errors", len(c.errs)).Wrapf(errors.Join(c.errs...), "build world")
	}
	return w, nil
}
