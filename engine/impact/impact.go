// Package impact parses state-mutation directives into typed impacts.
//
//	+ref  add a tag (or take an item, for inventory.X)
//	-ref  remove a tag (or drop an item)
//	!ref  invert a tag
//	>key  move the focus to a location
//	#ref  raise an event on the referenced scope
package impact

import (
	"fmt"
	"strings"

	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/ref"
)

// Impact is one compiled directive. The set of impact types is closed:
// Manipulate, Focus, Event.
type Impact interface {
	isImpact()
	String() string
}

// Op is the mutation applied by a Manipulate impact.
type Op int

const (
	Add Op = iota
	Remove
	Invert
)

func (o Op) prefix() string {
	switch o {
	case Add:
		return "+"
	case Remove:
		return "-"
	default:
		return "!"
	}
}

func (o Op) String() string {
	switch o {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Invert:
		return "invert"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Manipulate adds, removes or inverts the referenced tag or item.
type Manipulate struct {
	Ref ref.Reference
	Op  Op
}

// Focus moves the world focus to the location registered under Target.
type Focus struct {
	Target string
}

// Event notifies the referenced scope that the named event happened.
type Event struct {
	Ref ref.Reference
}

func (Manipulate) isImpact() {}
func (Focus) isImpact()      {}
func (Event) isImpact()      {}

func (m Manipulate) String() string { return m.Op.prefix() + m.Ref.String() }
func (f Focus) String() string      { return ">" + f.Target }
func (e Event) String() string      { return "#" + e.Ref.String() }

// Parse compiles a single directive.
func Parse(directive string) (Impact, error) {
	d := strings.TrimSpace(directive)
	if len(d) < 2 {
		return nil, fmt.Errorf("%w: directive %q is too short", errs.ErrInvalidExpression, directive)
	}
	body := strings.TrimSpace(d[1:])

	switch d[0] {
	case '+', '-', '!':
		r, err := ref.Parse(body)
		if err != nil {
			return nil, fmt.Errorf("directive %q: %w", d, err)
		}
		op := Add
		if d[0] == '-' {
			op = Remove
		} else if d[0] == '!' {
			op = Invert
		}
		return Manipulate{Ref: r, Op: op}, nil
	case '>':
		if body == "" || strings.Contains(body, ".") {
			return nil, fmt.Errorf("%w: focus target %q must be a plain key", errs.ErrInvalidExpression, body)
		}
		return Focus{Target: body}, nil
	case '#':
		r, err := ref.Parse(body)
		if err != nil {
			return nil, fmt.Errorf("directive %q: %w", d, err)
		}
		return Event{Ref: r}, nil
	default:
		return nil, fmt.Errorf("%w: unknown directive prefix %q in %q", errs.ErrInvalidExpression, d[0], d)
	}
}

// ParseList compiles a comma-separated directive list. A blank list yields
// no impacts; a blank entry inside a list is an error.
func ParseList(s string) ([]Impact, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Impact, 0, len(parts))
	for _, p := range parts {
		imp, err := Parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, nil
}

// MustParseList is like ParseList but panics on error.
func MustParseList(s string) []Impact {
	out, err := ParseList(s)
	if err != nil {
		panic(err)
	}
	return out
}

// Join renders impacts back into directive form.
func Join(impacts []Impact) string {
	parts := make([]string, len(impacts))
	for i, imp := range impacts {
		parts[i] = imp.String()
	}
	return strings.Join(parts, ",")
}
