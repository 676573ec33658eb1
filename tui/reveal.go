package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/fabula/engine/markup"
)

// revealTickMsg advances the timed reveal by one step. Ticks from a reveal
// that was skipped carry a stale generation and are ignored.
type revealTickMsg struct {
	gen int
}

// reveal is the queue of lines waiting to be shown. Only narrative lines
// are animated; anything else is shown as soon as it reaches the front.
type reveal struct {
	queue []rawLine
	seg   int // segment of queue[0] being revealed
	off   int // runes of that segment already shown
	gen   int
}

func (r *reveal) active() bool { return len(r.queue) > 0 }

// partial returns the front line and the number of runes of its current
// segment shown so far, for rendering.
func (r *reveal) partial() (rawLine, int, bool) {
	if !r.active() {
		return rawLine{}, 0, false
	}
	line := r.queue[0]
	if line.kind != kindNarrative || r.seg >= len(line.segments) {
		return rawLine{}, 0, false
	}
	line.segments = line.segments[:r.seg+1]
	return line, r.off, true
}

// pop moves finished and non-animated lines from the front of the queue
// to shown, and returns the delay before the next step. ok is false once
// the queue is empty.
func (r *reveal) pop(shown *[]rawLine) (time.Duration, bool) {
	for r.active() {
		line := r.queue[0]
		if line.kind == kindNarrative && r.seg < len(line.segments) {
			seg := line.segments[r.seg]
			d := seg.Speed.PerRune()
			if r.off == 0 {
				d += seg.Delay
			}
			return d, true
		}
		*shown = append(*shown, line)
		r.queue = r.queue[1:]
		r.seg, r.off = 0, 0
	}
	return 0, false
}

// step reveals the next rune, or the whole segment when it is instant.
func (r *reveal) step() {
	if !r.active() {
		return
	}
	line := r.queue[0]
	if r.seg >= len(line.segments) {
		return
	}
	seg := line.segments[r.seg]
	n := len([]rune(seg.Text))
	if seg.Speed == markup.Instant {
		r.off = n
	} else {
		r.off++
	}
	if r.off >= n {
		r.seg++
		r.off = 0
	}
}

// skip shows everything queued at once and invalidates pending ticks.
func (r *reveal) skip(shown *[]rawLine) {
	*shown = append(*shown, r.queue...)
	r.queue = nil
	r.seg, r.off = 0, 0
	r.gen++
}

// schedule pops what can be shown now and returns the tick for the next
// animated step, or nil when nothing is left.
func (m *Model) schedule() tea.Cmd {
	d, ok := m.reveal.pop(&m.lines)
	if !ok {
		return nil
	}
	gen := m.reveal.gen
	return tea.Tick(d, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

// enqueue adds lines to the narrative. With reveal off they are shown
// immediately.
func (m *Model) enqueue(lines []rawLine) tea.Cmd {
	if !m.opts.Reveal {
		m.lines = append(m.lines, lines...)
		return nil
	}
	running := m.reveal.active()
	m.reveal.queue = append(m.reveal.queue, lines...)
	if running {
		return nil
	}
	return m.schedule()
}
