// Package events carries the notifications the world emits when focus,
// tags or held items change, or when an impact or markup directive raises
// a named event. Notifications are plain values delivered to a Sink.
package events

import "fmt"

// Kind classifies an Event.
type Kind int

const (
	FocusLost Kind = iota
	FocusChanged
	FocusGained
	TagChanged
	ItemChanged
	Impact
	Markup
)

func (k Kind) String() string {
	switch k {
	case FocusLost:
		return "focus_lost"
	case FocusChanged:
		return "focus_changed"
	case FocusGained:
		return "focus_gained"
	case TagChanged:
		return "tag_changed"
	case ItemChanged:
		return "item_changed"
	case Impact:
		return "impact"
	case Markup:
		return "markup"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// PlayerKey identifies the player as an event subject.
const PlayerKey = "player"

// Event is one notification.
type Event struct {
	Kind    Kind
	Key     string // subject entity key, PlayerKey, or "" for unkeyed entities
	Name    string // tag, item key, event name or markup argument
	Present bool   // for TagChanged/ItemChanged: whether Name is now present
}

func (e Event) String() string {
	switch e.Kind {
	case TagChanged, ItemChanged:
		sign := "-"
		if e.Present {
			sign = "+"
		}
		return fmt.Sprintf("%s %s %s%s", e.Kind, e.Key, sign, e.Name)
	case FocusLost, FocusChanged, FocusGained:
		return fmt.Sprintf("%s %s", e.Kind, e.Key)
	default:
		return fmt.Sprintf("%s %s#%s", e.Kind, e.Key, e.Name)
	}
}

// Sink receives events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Fanout delivers each event to every sink in order.
type Fanout []Sink

func (f Fanout) Emit(e Event) {
	for _, s := range f {
		s.Emit(e)
	}
}

// Recorder keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(e Event) { r.Events = append(r.Events, e) }

// Drain returns the recorded events and clears the recorder.
func (r *Recorder) Drain() []Event {
	out := r.Events
	r.Events = nil
	return out
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []Kind {
	out := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}
