package world

import (
	"github.com/samber/oops"

	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/events"
	"github.com/nathoo/fabula/engine/impact"
	"github.com/nathoo/fabula/engine/ref"
)

// Reaction is the batch of impacts an event handler contributed, to be
// applied with the handler's owner as source.
type Reaction struct {
	Source  *Entity // nil for player handlers
	Impacts []impact.Impact
}

// Apply executes one impact against the scope it references. Event
// impacts return the reactions of the matching handlers; Apply does not run
// them.
func (w *World) Apply(source *Entity, imp impact.Impact) ([]Reaction, error) {
	w.log.Debug("apply impact", "impact", imp.String(), "source", sourceKey(source))

	switch im := imp.(type) {
	case impact.Manipulate:
		return nil, w.manipulate(source, im)
	case impact.Focus:
		loc := w.Resolve(im.Target)
		if loc == nil || loc.Kind != Location {
			return nil, oops.In("world").With("impact", im.String()).Wrapf(errs.ErrUnknownReference, "focus target %q is not a location", im.Target)
		}
		return nil, w.SetFocus(loc)
	case impact.Event:
		return w.raise(source, im)
	default:
		return nil, oops.In("world").Errorf("unhandled impact %T", imp)
	}
}

// ApplyAll executes impacts in order, then runs the handler reactions they
// raised in a single pass: events raised by reactions are emitted to the
// sink but not dispatched to handlers again. Impacts applied before a
// failing one stay applied.
func (w *World) ApplyAll(source *Entity, impacts []impact.Impact) ([]impact.Impact, error) {
	applied := make([]impact.Impact, 0, len(impacts))
	var reactions []Reaction
	for _, imp := range impacts {
		rs, err := w.Apply(source, imp)
		if err != nil {
			return applied, err
		}
		applied = append(applied, imp)
		reactions = append(reactions, rs...)
	}

	for _, r := range reactions {
		for _, imp := range r.Impacts {
			if _, err := w.Apply(r.Source, imp); err != nil {
				return applied, err
			}
			applied = append(applied, imp)
		}
	}
	return applied, nil
}

func (w *World) manipulate(source *Entity, m impact.Manipulate) error {
	r := m.Ref
	if r.Scope == ref.Inventory {
		item := w.Resolve(r.Property)
		if item == nil || item.Kind != Item {
			return oops.In("world").With("impact", m.String()).Wrapf(errs.ErrUnknownReference, "no item %q", r.Property)
		}
		held := w.player.Holds(r.Property)
		want := held
		switch m.Op {
		case impact.Add:
			want = true
		case impact.Remove:
			want = false
		case impact.Invert:
			want = !held
		}
		if want == held {
			return nil
		}
		if want {
			w.player.Items.Put(r.Property)
		} else {
			w.player.Items.Remove(r.Property)
		}
		w.sink.Emit(events.Event{Kind: events.ItemChanged, Key: events.PlayerKey, Name: r.Property, Present: want})
		return nil
	}

	key := events.PlayerKey
	set := w.player.Tags
	switch r.Scope {
	case ref.Local:
		if source != nil {
			key, set = source.Key, source.Tags
		}
	case ref.Global:
		e, err := w.resolveRef(r)
		if err != nil {
			return err
		}
		key, set = e.Key, e.Tags
	}

	var changed, present bool
	switch m.Op {
	case impact.Add:
		changed, present = set.Add(r.Property), true
	case impact.Remove:
		changed, present = set.Remove(r.Property), false
	case impact.Invert:
		changed, present = true, set.Invert(r.Property)
	}
	if changed {
		w.sink.Emit(events.Event{Kind: events.TagChanged, Key: key, Name: r.Property, Present: present})
	}
	return nil
}

// raise notifies the scope an Event impact references and collects the
// reactions of its handlers.
func (w *World) raise(source *Entity, ev impact.Event) ([]Reaction, error) {
	r := ev.Ref
	var target *Entity
	switch r.Scope {
	case ref.Inventory:
		return nil, oops.In("world").With("impact", ev.String()).Wrapf(errs.ErrInvalidEventTarget, "events cannot target the inventory")
	case ref.Player:
		target = nil
	case ref.Local:
		target = source
	case ref.Global:
		e, err := w.resolveRef(r)
		if err != nil {
			return nil, err
		}
		target = e
	}

	w.sink.Emit(events.Event{Kind: events.Impact, Key: sourceKey(target), Name: r.Property})

	handlers := w.player.Handlers
	if target != nil {
		handlers = target.Handlers
	}
	return w.dispatch(target, handlers, r.Property)
}

// dispatch evaluates handlers for one event. Matching handlers fire
// (counting towards their limit) and contribute their impacts.
func (w *World) dispatch(owner *Entity, handlers []*Handler, name string) ([]Reaction, error) {
	var out []Reaction
	for _, h := range handlers {
		if h.Event != name {
			continue
		}
		ok, err := h.Desc.Available(w.Facts(owner))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		h.Desc.Fire()
		if len(h.Desc.Impacts) > 0 {
			out = append(out, Reaction{Source: owner, Impacts: h.Desc.Impacts})
		}
	}
	return out, nil
}

func sourceKey(e *Entity) string {
	if e == nil {
		return events.PlayerKey
	}
	return e.Key
}
