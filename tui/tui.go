package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/fabula/engine"
	"github.com/nathoo/fabula/engine/markup"
	"github.com/nathoo/fabula/types"
)

// rawLine stores an output line before wrapping, so it can be re-wrapped
// and re-styled when the terminal is resized. Narrative lines keep their
// markup segments; everything else is plain text.
type rawLine struct {
	kind     lineKind
	text     string
	segments []markup.Segment
}

// Options tunes presentation.
type Options struct {
	Reveal bool // type text out at its markup speed
	Wrap   int  // wrap column, 0 follows the terminal width
}

// Model is the Bubble Tea model for the game.
type Model struct {
	engine *engine.Engine
	opts   Options

	viewport viewport.Model
	input    textinput.Model
	history  *History

	lines     []rawLine // shown narrative, unwrapped
	reveal    reveal
	lastFocus string
	opening   types.Result

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// stepMsg carries an engine result into the Update loop.
type stepMsg struct {
	input  string // echoed player input (empty for the opening)
	result types.Result
	banner bool
}

// New creates a TUI model wired to the given engine and starts the game.
func New(eng *engine.Engine, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		opts:    opts,
		input:   ti,
		history: NewHistory(100),
		opening: eng.Start(),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, opts Options) error {
	p := tea.NewProgram(New(eng, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the opening text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return stepMsg{result: m.opening, banner: true}
	})
}

// Update handles messages (key presses, window resize, game output, reveal
// ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(m.height-2, 1) // 1 status bar + 1 input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		// Any key finishes the reveal in progress.
		if m.reveal.active() {
			m.reveal.skip(&m.lines)
			m.refreshViewport()
			return m, nil
		}
		switch msg.String() {
		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case stepMsg:
		cmd := m.show(msg)
		m.refreshViewport()
		return m, cmd

	case revealTickMsg:
		if msg.gen != m.reveal.gen {
			return m, nil
		}
		m.reveal.step()
		cmd := m.schedule()
		m.refreshViewport()
		return m, cmd
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		lines := []rawLine{{kind: kindInput, text: "> " + input}}
		for _, o := range output {
			lines = append(lines, rawLine{kind: kindSystem, text: o})
		}
		lines = append(lines, rawLine{})
		m.lines = append(m.lines, lines...)
		m.refreshViewport()
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m.lines = append(m.lines,
				rawLine{kind: kindInput, text: "> " + input},
				rawLine{kind: kindSystem, text: "Nothing to repeat."},
				rawLine{})
			m.refreshViewport()
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	cmd := m.show(stepMsg{input: input, result: m.engine.Step(input)})
	m.refreshViewport()
	return m, cmd
}

// show turns a result into lines: echoed input, a heading when the focus
// moved, rendered narrative, errors, trace and the menu.
func (m *Model) show(msg stepMsg) tea.Cmd {
	var lines []rawLine
	if msg.banner {
		g := m.engine.Defs.Game
		banner := g.Title
		if g.Version != "" {
			banner += " v" + g.Version
		}
		if g.Author != "" {
			banner += " by " + g.Author
		}
		lines = append(lines, rawLine{kind: kindHeading, text: banner}, rawLine{})
	}
	if msg.input != "" {
		lines = append(lines, rawLine{kind: kindInput, text: "> " + msg.input})
	}

	if focus := m.engine.Focus(); focus.Key != m.lastFocus {
		m.lastFocus = focus.Key
		if !msg.banner {
			lines = append(lines, rawLine{kind: kindHeading, text: plain(displayName(focus))})
		}
	}

	for _, text := range msg.result.Output {
		lines = append(lines, rawLine{kind: kindNarrative, segments: m.engine.Render(text)})
	}
	if msg.result.Err != nil {
		lines = append(lines, rawLine{kind: kindError, text: fmt.Sprintf("Error: %v", msg.result.Err)})
	}
	if m.trace {
		for _, t := range formatTrace(msg.result) {
			lines = append(lines, rawLine{kind: kindTrace, text: t})
		}
	}
	if len(msg.result.Menu) > 0 {
		lines = append(lines, rawLine{})
		lines = append(lines, m.menuLines(msg.result.Menu)...)
	}
	lines = append(lines, rawLine{})
	return m.enqueue(lines)
}

func (m *Model) menuLines(menu []string) []rawLine {
	out := make([]rawLine, len(menu))
	for i, title := range menu {
		out[i] = rawLine{kind: kindMenu, text: fmt.Sprintf("  %d. %s", i+1, plain(title))}
	}
	return out
}

// refreshViewport re-wraps and re-styles all lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if m.opts.Wrap > 0 && m.opts.Wrap < width {
		width = m.opts.Wrap
	}
	width = max(width, 10)

	styled := make([]string, 0, len(m.lines)+1)
	for _, rl := range m.lines {
		styled = append(styled, styleLine(rl, -1, width))
	}
	if line, off, ok := m.reveal.partial(); ok {
		styled = append(styled, styleLine(line, off, width))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

func styleLine(rl rawLine, limit, width int) string {
	if rl.kind == kindNarrative {
		return wordwrap.String(renderSegments(rl.segments, limit), width)
	}
	if rl.text == "" {
		return ""
	}
	return renderLine(wordwrap.String(rl.text, width), rl.kind)
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/reveal":
		m.opts.Reveal = !m.opts.Reveal
		if m.opts.Reveal {
			return []string{"Timed text enabled."}, false
		}
		return []string{"Timed text disabled."}, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func cmdHelp() []string {
	return []string{
		"System:",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /reveal       Toggle timed text",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Game commands:",
		"  <number>              Choose a numbered option",
		"  <title>               Choose an option by name",
		"  look (l)              Describe where you are again",
		"  back (b)              Return to the enclosing place",
		"  inventory (i)         List what you're carrying",
		"  use <thing> with <thing>",
		"  again (g)             Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history,",
		"any key while text is appearing shows it all.",
	}
}

func (m *Model) cmdState() []string {
	p := m.engine.World.Player()
	focus := m.engine.Focus()
	output := []string{
		fmt.Sprintf("Turn: %d", m.engine.TurnCount()),
		fmt.Sprintf("Focus: %s", focus.Key),
		fmt.Sprintf("Seed: %d (draws: %d)", m.engine.RNG.Seed(), m.engine.RNG.Position()),
	}
	if p.Tags.Len() > 0 {
		output = append(output, fmt.Sprintf("Player tags: %s", strings.Join(p.Tags.List(), ", ")))
	}
	if focus.Tags.Len() > 0 {
		output = append(output, fmt.Sprintf("%s tags: %s", focus.Key, strings.Join(focus.Tags.List(), ", ")))
	}
	return output
}

func formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Impacts) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Impacts: %s", strings.Join(result.Impacts, ", ")))
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
