// Package world holds every taggable entity, the player and the focus, and
// executes impacts against the scope they reference. Entities live in an
// arena and refer to each other by index; keys resolve to indices.
package world

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/fabula/engine/describe"
	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/events"
	"github.com/nathoo/fabula/engine/ref"
	"github.com/nathoo/fabula/engine/requirement"
	"github.com/nathoo/fabula/engine/tags"
)

// Kind is the variant of an entity.
type Kind int

const (
	Location Kind = iota
	Interaction
	Item
)

func (k Kind) String() string {
	switch k {
	case Location:
		return "location"
	case Interaction:
		return "interaction"
	default:
		return "item"
	}
}

// NoParent marks an entity without a parent.
const NoParent = -1

// Entity is a location, interaction or item.
type Entity struct {
	ID    int
	Key   string // empty for anonymous interactions
	Kind  Kind
	Title string
	Tags  *tags.Set
	Desc  *describe.Node

	Parent       int   // index of the enclosing location, NoParent if none
	Locations    []int // child locations, declaration order
	Interactions []int // interactions, declaration order

	Combinations []*Combination
	Handlers     []*Handler
}

// Name returns the title, falling back to the key.
func (e *Entity) Name() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Key
}

// Combination is what happens when its owner is used with With.
type Combination struct {
	With string
	Desc *describe.Node
}

// Handler reacts to a named event raised on its owner. Only the
// requirement, limit and impacts of Desc are used.
type Handler struct {
	Event string
	Desc  *describe.Node
}

// Player holds the player's tags, held item keys and event handlers.
type Player struct {
	Tags     *tags.Set
	Items    mapset.Set[string]
	Handlers []*Handler
}

// Holds reports whether the player holds the item registered under key.
func (p *Player) Holds(key string) bool {
	return p.Items.Has(key)
}

// World is the state store.
type World struct {
	entities []*Entity
	keys     map[string]int
	player   *Player
	focus    int

	sink events.Sink
	log  *slog.Logger
}

// Option configures a World.
type Option func(*World)

// WithSink routes notifications to s.
func WithSink(s events.Sink) Option {
	return func(w *World) { w.sink = s }
}

// WithLogger sets the logger used for impact and focus tracing.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.log = l }
}

// New creates an empty world.
func New(opts ...Option) *World {
	w := &World{
		keys: map[string]int{},
		player: &Player{
			Tags:  tags.New(),
			Items: mapset.New[string](),
		},
		focus: NoParent,
		sink:  events.Discard,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Register adds e to the arena and binds its key. Entities without a key
// are stored but never resolvable.
func (w *World) Register(e *Entity) error {
	if e.Key != "" {
		if _, dup := w.keys[e.Key]; dup {
			return oops.In("world").With("key", e.Key).Wrapf(errs.ErrDuplicateKey, "register %s %q", e.Kind, e.Key)
		}
	}
	if e.Tags == nil {
		e.Tags = tags.New()
	}
	if e.Desc == nil {
		e.Desc = &describe.Node{}
	}
	e.ID = len(w.entities)
	w.entities = append(w.entities, e)
	if e.Key != "" {
		w.keys[e.Key] = e.ID
	}
	return nil
}

// Resolve returns the entity registered under key, or nil.
func (w *World) Resolve(key string) *Entity {
	if key == "" {
		return nil
	}
	if id, ok := w.keys[key]; ok {
		return w.entities[id]
	}
	return nil
}

// Entity returns the entity at index id, or nil.
func (w *World) Entity(id int) *Entity {
	if id < 0 || id >= len(w.entities) {
		return nil
	}
	return w.entities[id]
}

// Entities returns every registered entity in registration order.
func (w *World) Entities() []*Entity {
	return w.entities
}

// Player returns the player.
func (w *World) Player() *Player {
	return w.player
}

// Parent returns the entity's parent, or nil.
func (w *World) Parent(e *Entity) *Entity {
	return w.Entity(e.Parent)
}

// IsRoot reports whether e is a top-level location. Roots are always
// available.
func (w *World) IsRoot(e *Entity) bool {
	return e.Kind == Location && e.Parent == NoParent
}

// Focus returns the focused location, or nil before initialization.
func (w *World) Focus() *Entity {
	return w.Entity(w.focus)
}

// SetFocus moves the focus to loc. Focusing the current location is a
// no-op; otherwise FocusLost, FocusChanged and FocusGained are emitted in
// that order.
func (w *World) SetFocus(loc *Entity) error {
	if loc == nil || loc.Kind != Location || w.Entity(loc.ID) != loc {
		return oops.In("world").Wrapf(errs.ErrUnknownReference, "focus target is not a registered location")
	}
	if w.focus == loc.ID {
		return nil
	}
	if old := w.Focus(); old != nil {
		w.sink.Emit(events.Event{Kind: events.FocusLost, Key: old.Key})
	}
	w.focus = loc.ID
	w.log.Info("focus changed", "location", loc.Key)
	w.sink.Emit(events.Event{Kind: events.FocusChanged, Key: loc.Key})
	w.sink.Emit(events.Event{Kind: events.FocusGained, Key: loc.Key})
	return nil
}

// HasFact reports whether the reference holds, seen from source. A nil
// source stands for the player, so local references in player handlers
// read the player's tags.
func (w *World) HasFact(source *Entity, r ref.Reference) (bool, error) {
	switch r.Scope {
	case ref.Inventory:
		return w.player.Holds(r.Property), nil
	case ref.Player:
		return w.player.Tags.Has(r.Property), nil
	case ref.Local:
		if source == nil {
			return w.player.Tags.Has(r.Property), nil
		}
		return source.Tags.Has(r.Property), nil
	case ref.Global:
		e, err := w.resolveRef(r)
		if err != nil {
			return false, err
		}
		return e.Tags.Has(r.Property), nil
	default:
		return false, oops.In("world").Errorf("unhandled scope %s", r.Scope)
	}
}

// Facts binds HasFact to source.
func (w *World) Facts(source *Entity) requirement.Predicate {
	return func(r ref.Reference) (bool, error) { return w.HasFact(source, r) }
}

// IsAvailable reports whether e may be offered or evaluated.
func (w *World) IsAvailable(e *Entity) (bool, error) {
	if w.IsRoot(e) {
		return true, nil
	}
	ok, err := e.Desc.Available(w.Facts(e))
	if err != nil {
		return false, oops.In("world").With("entity", e.Key).Wrapf(err, "availability of %s %q", e.Kind, e.Name())
	}
	return ok, nil
}

func (w *World) resolveRef(r ref.Reference) (*Entity, error) {
	e := w.Resolve(r.Element)
	if e == nil {
		return nil, oops.In("world").With("reference", r.String()).Wrapf(errs.ErrUnknownReference, "no entity %q", r.Element)
	}
	return e, nil
}
