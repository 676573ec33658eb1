// Package markup expands the inline directives embedded in description
// text. A directive is a bracketed name followed by zero or more braced
// arguments, for example [c]{red}{green}{blue}. Braces nest.
//
// Expansion is a single left-to-right pass: each directive is cut from the
// stream and replaced by its substitution, which is then scanned again
// before the rest of the text.
package markup

import (
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/fabula/engine/events"
)

// Speed is the reveal speed of a segment.
type Speed int

const (
	Normal Speed = iota
	Instant
	Quick
	Slow
)

// PerRune is the reveal delay between runes.
func (s Speed) PerRune() time.Duration {
	switch s {
	case Instant:
		return 0
	case Quick:
		return 10 * time.Millisecond
	case Slow:
		return 80 * time.Millisecond
	default:
		return 30 * time.Millisecond
	}
}

func (s Speed) String() string {
	switch s {
	case Instant:
		return "instant"
	case Quick:
		return "quick"
	case Slow:
		return "slow"
	default:
		return "normal"
	}
}

// DefaultDelay is the pause of a delay directive without an argument.
const DefaultDelay = 500 * time.Millisecond

// Chooser picks an index in [0, n).
type Chooser interface {
	Intn(n int) int
}

// State is the render state carried across directives.
type State struct {
	Iteration int
	Speed     Speed
	Fg, Bg    string

	Chooser Chooser     // nil always picks the first argument
	Sink    events.Sink // receives Markup events; may be nil
}

// Segment is a run of text sharing one style. Delay is the pause before
// the text is revealed.
type Segment struct {
	Text  string
	Speed Speed
	Delay time.Duration
	Fg    string
	Bg    string
}

// Expand returns text with every directive applied and removed.
func Expand(text string, st *State) string {
	var b strings.Builder
	for _, seg := range Render(text, st) {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Render expands text into styled segments. st is updated in place.
func Render(text string, st *State) []Segment {
	if st == nil {
		st = &State{}
	}
	r := &renderer{st: st}
	r.run(text)
	return r.flush()
}

type renderer struct {
	st    *State
	segs  []Segment
	cur   strings.Builder
	delay time.Duration
}

func (r *renderer) run(s string) {
	for s != "" {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			r.cur.WriteString(s)
			return
		}
		r.cur.WriteString(s[:open])

		name, end, ok := scanName(s, open)
		if !ok {
			// Malformed or empty directive: the rest is literal.
			r.cur.WriteString(s[open:])
			return
		}
		args, end := scanArgs(s, end)
		s = r.apply(name, args) + s[end:]
	}
}

// scanName reads "[name]" starting at open. It fails when the closing
// bracket is missing, another "[" comes first, or the name is empty.
func scanName(s string, open int) (string, int, bool) {
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '[':
			return "", 0, false
		case ']':
			name := strings.TrimSpace(s[open+1 : i])
			if name == "" {
				return "", 0, false
			}
			return strings.ToLower(name), i + 1, true
		}
	}
	return "", 0, false
}

// scanArgs collects consecutive braced arguments starting at pos. An
// unterminated brace ends collection and is left in the stream.
func scanArgs(s string, pos int) ([]string, int) {
	var args []string
	for pos < len(s) && s[pos] == '{' {
		depth := 0
		closeAt := -1
		for i := pos; i < len(s) && closeAt < 0; i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					closeAt = i
				}
			}
		}
		if closeAt < 0 {
			break
		}
		args = append(args, s[pos+1:closeAt])
		pos = closeAt + 1
	}
	return args, pos
}

// apply runs one directive and returns its substitution.
func (r *renderer) apply(name string, args []string) string {
	st := r.st
	switch name {
	case "instant":
		r.restyle(func() { st.Speed = Instant })
	case "quick":
		r.restyle(func() { st.Speed = Quick })
	case "normal":
		r.restyle(func() { st.Speed = Normal })
	case "slow":
		r.restyle(func() { st.Speed = Slow })
	case "delay", "wait", "d":
		d := DefaultDelay
		if len(args) > 0 {
			if ms, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil && ms >= 0 {
				d = time.Duration(ms) * time.Millisecond
			}
		}
		r.cut()
		r.delay += d
	case "fg":
		r.restyle(func() { st.Fg = first(args) })
	case "bg":
		r.restyle(func() { st.Bg = first(args) })
	case "rand", "r":
		if len(args) == 0 {
			return ""
		}
		i := 0
		if st.Chooser != nil {
			i = st.Chooser.Intn(len(args))
		}
		return args[i]
	case "cycle", "c":
		if len(args) == 0 {
			return ""
		}
		return args[mod(st.Iteration, len(args))]
	case "augment", "a":
		if len(args) == 0 {
			return ""
		}
		return args[max(0, min(st.Iteration, len(args)-1))]
	case "parm", "p":
		if n, err := strconv.Atoi(strings.TrimSpace(first(args))); err == nil {
			st.Iteration = n
		}
	case "event", "e":
		if st.Sink != nil {
			st.Sink.Emit(events.Event{Kind: events.Markup, Name: first(args)})
		}
	}
	return ""
}

// restyle applies set and closes the current segment if the style changed.
func (r *renderer) restyle(set func()) {
	before := r.style()
	set()
	if r.style() != before {
		r.cutAs(before)
	}
}

func (r *renderer) style() Segment {
	return Segment{Speed: r.st.Speed, Fg: r.st.Fg, Bg: r.st.Bg}
}

func (r *renderer) cut() { r.cutAs(r.style()) }

// cutAs ends the current segment with the given style. A pending delay
// without text waits for the next segment.
func (r *renderer) cutAs(style Segment) {
	if r.cur.Len() == 0 {
		return
	}
	style.Text = r.cur.String()
	style.Delay = r.delay
	r.segs = append(r.segs, style)
	r.cur.Reset()
	r.delay = 0
}

func (r *renderer) flush() []Segment {
	r.cut()
	if r.delay > 0 {
		seg := r.style()
		seg.Delay = r.delay
		r.segs = append(r.segs, seg)
		r.delay = 0
	}
	return r.segs
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
