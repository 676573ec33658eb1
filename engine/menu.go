package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/fabula/engine/events"
	"github.com/nathoo/fabula/engine/parser"
	"github.com/nathoo/fabula/engine/resolve"
	"github.com/nathoo/fabula/engine/world"
	"github.com/nathoo/fabula/types"
)

// maxFocusChain bounds how many focus changes one step follows, so two
// locations that focus each other cannot loop forever.
const maxFocusChain = 16

// option is one numbered menu entry.
type option struct {
	entity *world.Entity // nil for the back option
}

func (o option) title() string {
	if o.entity == nil {
		return "Back"
	}
	return o.entity.Name()
}

// Start describes the start location and builds the first menu.
func (e *Engine) Start() types.Result {
	var result types.Result
	if e.Defs.Game.Intro != "" {
		result.Output = append(result.Output, e.Defs.Game.Intro)
	}
	e.present(&result)
	return e.finish(result)
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	intent := parser.Parse(input)

	// 2. Dispatch.
	switch intent.Verb {
	case "":
		result.Output = append(result.Output, "What do you want to do?")
		return e.finish(result)
	case "select":
		e.stepSelect(&result, intent)
	case "look":
		text, err := e.evaluateFocus(false)
		result.Output = appendText(result.Output, text)
		result.Err = err
	case "back":
		if parent := e.World.Parent(e.Focus()); parent != nil {
			result.Err = e.SetFocus(parent)
		} else {
			result.Output = append(result.Output, "There is nowhere to go back to.")
		}
	case "inventory":
		e.stepInventory(&result)
	case "use":
		e.stepUse(&result, intent)
	case "again":
		result.Output = append(result.Output, "Nothing to repeat.")
	default:
		// A bare option title selects it.
		if ent, err := resolve.Resolve(input, e.menuEntities()); err == nil {
			e.choose(&result, option{entity: ent})
		} else {
			result.Output = append(result.Output, "I don't understand that.")
		}
	}

	// 3. A focus change resets the presentation.
	if result.Err == nil && e.focusChanged() {
		e.present(&result)
	}

	e.turnCount++
	return e.finish(result)
}

func (e *Engine) stepSelect(result *types.Result, intent types.Intent) {
	var chosen option
	switch {
	case intent.Choice > 0:
		if intent.Choice > len(e.options) {
			result.Output = append(result.Output, fmt.Sprintf("There is no option %d.", intent.Choice))
			return
		}
		chosen = e.options[intent.Choice-1]
	case intent.Object != "":
		ent, err := resolve.Resolve(intent.Object, e.menuEntities())
		if err != nil {
			result.Output = append(result.Output, err.Error())
			return
		}
		chosen = option{entity: ent}
	default:
		result.Output = append(result.Output, "Choose what?")
		return
	}
	e.choose(result, chosen)
}

// choose focuses a location option or evaluates an interaction.
func (e *Engine) choose(result *types.Result, chosen option) {
	switch {
	case chosen.entity == nil:
		result.Err = e.SetFocus(e.World.Parent(e.Focus()))
	case chosen.entity.Kind == world.Location:
		result.Err = e.SetFocus(chosen.entity)
	default:
		text, err := e.Evaluate(chosen.entity, true)
		result.Output = appendText(result.Output, text)
		result.Err = err
	}
}

func (e *Engine) stepInventory(result *types.Result) {
	items, err := e.Inventory()
	if err != nil {
		result.Err = err
		return
	}
	if len(items) == 0 {
		result.Output = append(result.Output, "You are carrying nothing.")
		return
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name()
	}
	result.Output = append(result.Output, "You are carrying: "+strings.Join(names, ", ")+".")
}

func (e *Engine) stepUse(result *types.Result, intent types.Intent) {
	if intent.Object == "" {
		result.Output = append(result.Output, "Use what?")
		return
	}
	if intent.Target == "" {
		result.Output = append(result.Output, "Use it with what?")
		return
	}

	candidates := e.menuEntities()
	items, err := e.Inventory()
	if err != nil {
		result.Err = err
		return
	}
	candidates = append(candidates, items...)
	candidates = append(candidates, e.Focus())

	a, err := resolve.Resolve(intent.Object, candidates)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return
	}
	b, err := resolve.Resolve(intent.Target, candidates)
	if err != nil {
		result.Output = append(result.Output, err.Error())
		return
	}

	text, ok, err := e.Combine(a, b)
	result.Err = err
	if !ok {
		result.Output = append(result.Output, "Nothing happens.")
		return
	}
	result.Output = appendText(result.Output, text)
}

// present evaluates the focused location, following focus changes its own
// impacts cause.
func (e *Engine) present(result *types.Result) {
	for i := 0; i < maxFocusChain && e.Focus() != nil; i++ {
		text, err := e.evaluateFocus(true)
		result.Output = appendText(result.Output, text)
		if err != nil {
			result.Err = err
			return
		}
		if !e.focusChanged() {
			return
		}
	}
}

// focusChanged reports whether a FocusChanged event was emitted since the
// last call.
func (e *Engine) focusChanged() bool {
	changed := false
	for _, ev := range e.rec.Events {
		if ev.Kind == events.FocusChanged {
			changed = true
		}
		e.pending = append(e.pending, ev)
	}
	e.rec.Events = nil
	return changed
}

func (e *Engine) buildMenu() error {
	focus := e.Focus()
	children, err := e.AvailableChildren(focus)
	if err != nil {
		return err
	}
	e.options = e.options[:0]
	for _, c := range children {
		e.options = append(e.options, option{entity: c})
	}
	if e.World.Parent(focus) != nil {
		e.options = append(e.options, option{})
	}
	return nil
}

func (e *Engine) menuEntities() []*world.Entity {
	var out []*world.Entity
	for _, o := range e.options {
		if o.entity != nil {
			out = append(out, o.entity)
		}
	}
	return out
}

// Menu returns the titles of the current options, in order.
func (e *Engine) Menu() []string {
	out := make([]string, len(e.options))
	for i, o := range e.options {
		out[i] = o.title()
	}
	return out
}

// finish fills in the menu and the trace fields and resets the per-step
// buffers.
func (e *Engine) finish(result types.Result) types.Result {
	if err := e.buildMenu(); err != nil && result.Err == nil {
		result.Err = err
	}
	e.focusChanged()

	result.Menu = e.Menu()
	for _, imp := range e.applied {
		result.Impacts = append(result.Impacts, imp.String())
	}
	for _, ev := range e.pending {
		result.Events = append(result.Events, ev.String())
	}
	e.applied, e.pending = nil, nil

	if result.Err != nil {
		e.log.Warn("step failed", "err", result.Err)
	}
	return result
}

func appendText(out []string, text string) []string {
	if strings.TrimSpace(text) == "" {
		return out
	}
	return append(out, text)
}
