// Package engine ties the world, the descriptor walk, the combination
// resolver and the markup interpreter into the operations a front end
// drives: evaluate, navigate, combine and render.
package engine

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/nathoo/fabula/engine/combine"
	"github.com/nathoo/fabula/engine/describe"
	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/events"
	"github.com/nathoo/fabula/engine/impact"
	"github.com/nathoo/fabula/engine/markup"
	"github.com/nathoo/fabula/engine/world"
	"github.com/nathoo/fabula/types"
)

// Engine holds the game definitions and mutable state.
type Engine struct {
	Defs  *types.Defs
	World *world.World
	RNG   *RNG

	log  *slog.Logger
	sink events.Sink      // caller's sink
	rec  *events.Recorder // events of the current step

	applied   []impact.Impact
	pending   []events.Event
	options   []option
	turnCount int
}

type options struct {
	seed   int64
	logger *slog.Logger
	sink   events.Sink
}

// Option configures an Engine.
type Option func(*options)

// WithSeed seeds the RNG used by random markup.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger passed down to the world.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSink receives every focus, tag, item, impact and markup event.
func WithSink(s events.Sink) Option {
	return func(o *options) { o.sink = s }
}

// New builds the world from defs and focuses the start location.
func New(defs *types.Defs, opts ...Option) (*Engine, error) {
	o := options{logger: slog.Default(), sink: events.Discard}
	for _, fn := range opts {
		fn(&o)
	}

	e := &Engine{
		Defs: defs,
		RNG:  NewRNG(o.seed),
		log:  o.logger,
		sink: o.sink,
		rec:  &events.Recorder{},
	}

	w, err := world.Build(defs,
		world.WithSink(events.Fanout{e.rec, e.sink}),
		world.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	e.World = w

	start := w.Resolve(defs.Game.Start)
	if start == nil || start.Kind != world.Location {
		return nil, oops.In("engine").With("start", defs.Game.Start).Wrapf(errs.ErrUnknownReference, "start %q is not a location", defs.Game.Start)
	}
	if err := w.SetFocus(start); err != nil {
		return nil, err
	}
	e.rec.Drain()
	return e, nil
}

// Evaluate walks the entity's description, then applies the collected
// impacts with the entity as source. The returned text still carries
// markup and never reflects the impacts of this call.
func (e *Engine) Evaluate(ent *world.Entity, count bool) (string, error) {
	return e.evaluate(ent, count, e.World.IsRoot(ent))
}

// evaluateFocus presents the focused location. Being focused makes it
// available regardless of its own requirement or limit.
func (e *Engine) evaluateFocus(count bool) (string, error) {
	return e.evaluate(e.Focus(), count, true)
}

func (e *Engine) evaluate(ent *world.Entity, count, root bool) (string, error) {
	res, err := describe.Accumulate(ent.Desc, e.World.Facts(ent), count, root)
	if err != nil {
		return "", oops.In("engine").With("entity", ent.Key).Wrapf(err, "evaluate %s %q", ent.Kind, ent.Name())
	}
	if err := e.apply(ent, res.Impacts); err != nil {
		return res.Text, err
	}
	return res.Text, nil
}

func (e *Engine) apply(source *world.Entity, impacts []impact.Impact) error {
	applied, err := e.World.ApplyAll(source, impacts)
	e.applied = append(e.applied, applied...)
	if err != nil {
		key := events.PlayerKey
		if source != nil {
			key = source.Key
		}
		return oops.In("engine").With("source", key).Wrapf(err, "apply impacts")
	}
	return nil
}

// IsAvailable reports whether ent may be offered to the player.
func (e *Engine) IsAvailable(ent *world.Entity) (bool, error) {
	return e.World.IsAvailable(ent)
}

// AvailableChildren returns the available child locations of loc followed
// by its available interactions, each in declaration order.
func (e *Engine) AvailableChildren(loc *world.Entity) ([]*world.Entity, error) {
	ids := make([]int, 0, len(loc.Locations)+len(loc.Interactions))
	ids = append(ids, loc.Locations...)
	ids = append(ids, loc.Interactions...)
	return e.filter(ids)
}

// Inventory returns the available held items in declaration order.
func (e *Engine) Inventory() ([]*world.Entity, error) {
	var ids []int
	p := e.World.Player()
	for _, ent := range e.World.Entities() {
		if ent.Kind == world.Item && p.Holds(ent.Key) {
			ids = append(ids, ent.ID)
		}
	}
	return e.filter(ids)
}

func (e *Engine) filter(ids []int) ([]*world.Entity, error) {
	var out []*world.Entity
	for _, id := range ids {
		ent := e.World.Entity(id)
		ok, err := e.World.IsAvailable(ent)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ent)
		}
	}
	return out, nil
}

// Focus returns the focused location.
func (e *Engine) Focus() *world.Entity {
	return e.World.Focus()
}

// SetFocus moves the focus to loc.
func (e *Engine) SetFocus(loc *world.Entity) error {
	return e.World.SetFocus(loc)
}

// Combine resolves a and b to a combination and evaluates it with its
// owner as source. ok is false when neither side declares an available
// combination for the pair.
func (e *Engine) Combine(a, b *world.Entity) (text string, ok bool, err error) {
	c, owner, err := combine.Find(e.World, a, b)
	if err != nil {
		return "", false, oops.In("engine").Wrapf(err, "combine %q with %q", a.Name(), b.Name())
	}
	if c == nil {
		return "", false, nil
	}
	res, err := describe.Accumulate(c.Desc, e.World.Facts(owner), true, true)
	if err != nil {
		return "", true, oops.In("engine").Wrapf(err, "combine %q with %q", a.Name(), b.Name())
	}
	return res.Text, true, e.apply(owner, res.Impacts)
}

// Render expands markup into styled segments. Random picks use the
// engine's RNG and markup events go to the engine's sink.
func (e *Engine) Render(text string) []markup.Segment {
	return markup.Render(text, e.markupState())
}

// Expand expands markup into plain text.
func (e *Engine) Expand(text string) string {
	return markup.Expand(text, e.markupState())
}

func (e *Engine) markupState() *markup.State {
	return &markup.State{Chooser: e.RNG, Sink: e.sink}
}

// TurnCount returns the number of steps taken.
func (e *Engine) TurnCount() int {
	return e.turnCount
}
