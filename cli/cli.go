// Package cli provides the line-oriented front end: plain terminal I/O,
// markup flattened to text, and meta-command dispatch.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/fabula/engine"
	"github.com/nathoo/fabula/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Width     int // wrap column, 0 disables wrapping
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the game loop. It shows the intro and the start location,
// then loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	c.show(c.Engine.Start())

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.show(c.Engine.Step(input))
	}
}

func (c *CLI) show(result types.Result) {
	c.printResult(result)
	if c.Trace {
		c.printTrace(result)
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/menu":
		c.printMenu(c.Engine.Menu())

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /menu         Show the current choices again",
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
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	w := c.Engine.World
	p := w.Player()

	c.printSystem(fmt.Sprintf("Turn: %d", c.Engine.TurnCount()))
	c.printSystem(fmt.Sprintf("Focus: %s", c.Engine.Focus().Key))
	c.printSystem(fmt.Sprintf("Seed: %d (draws: %d)", c.Engine.RNG.Seed(), c.Engine.RNG.Position()))

	var held []string
	p.Items.Each(func(key string) { held = append(held, key) })
	if len(held) > 0 {
		sort.Strings(held)
		c.printSystem(fmt.Sprintf("Items: %s", strings.Join(held, ", ")))
	}
	if p.Tags.Len() > 0 {
		c.printSystem(fmt.Sprintf("Player tags: %s", strings.Join(p.Tags.List(), ", ")))
	}
	if focus := c.Engine.Focus(); focus.Tags.Len() > 0 {
		c.printSystem(fmt.Sprintf("%s tags: %s", focus.Key, strings.Join(focus.Tags.List(), ", ")))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Impacts) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Impacts: %s", strings.Join(result.Impacts, ", ")))
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, text := range result.Output {
		c.printLine(c.Engine.Expand(text))
	}
	if result.Err != nil {
		c.printSystem(fmt.Sprintf("Error: %v", result.Err))
	}
	c.printMenu(result.Menu)
}

func (c *CLI) printMenu(menu []string) {
	if len(menu) == 0 {
		return
	}
	c.printLine("")
	for i, title := range menu {
		c.printLine(fmt.Sprintf("  %d. %s", i+1, c.Engine.Expand(title)))
	}
}

func (c *CLI) printLine(text string) {
	if c.Width > 0 {
		text = wordwrap.String(text, c.Width)
	}
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
