package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/fabula/engine/markup"
	"github.com/nathoo/fabula/engine/world"
)

var titleCaser = cases.Title(language.English)

// displayName derives a heading from a location's title, or from its key
// when untitled: "great_hall" -> "Great Hall".
func displayName(ent *world.Entity) string {
	if ent == nil {
		return ""
	}
	name := ent.Title
	if name == "" {
		name = strings.ReplaceAll(ent.Key, "_", " ")
	}
	return titleCaser.String(name)
}

// plain strips markup from a name without touching the engine's RNG or
// event sink; the status bar is redrawn on every frame.
func plain(name string) string {
	return markup.Expand(name, nil)
}

// renderStatusBar produces a full-width inverted status line showing the
// focused location, what the player carries and the turn count.
func (m Model) renderStatusBar() string {
	turns := m.engine.TurnCount()

	left := " " + plain(displayName(m.engine.Focus()))
	right := fmt.Sprintf("T:%d ", turns)

	// Show held items if they fit, otherwise just count.
	items, err := m.engine.Inventory()
	if err == nil && len(items) > 0 {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = plain(it.Name())
		}
		candidate := fmt.Sprintf("Inv: %s | T:%d ", strings.Join(names, ", "), turns)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", len(items), turns)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
