package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/fabula/engine/markup"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	styleMenu = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindHeading
	kindMenu
	kindInput
	kindSystem
	kindError
	kindTrace
)

// colorNames maps the color names authors write in markup to ANSI codes.
// Anything else (hex, 256-color numbers) is passed to lipgloss as is.
var colorNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
	"grey":    "8",
}

func color(name string) lipgloss.Color {
	if code, ok := colorNames[strings.ToLower(name)]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.Color(name)
}

// segmentStyle derives the style for one markup segment.
func segmentStyle(seg markup.Segment) lipgloss.Style {
	st := styleNarrative
	if seg.Fg != "" {
		st = st.Foreground(color(seg.Fg))
	}
	if seg.Bg != "" {
		st = st.Background(color(seg.Bg))
	}
	return st
}

// renderSegments styles each segment's text, up to limit runes of the
// last one when limit is not negative.
func renderSegments(segs []markup.Segment, limit int) string {
	var b strings.Builder
	for i, seg := range segs {
		text := seg.Text
		if limit >= 0 && i == len(segs)-1 {
			r := []rune(text)
			text = string(r[:min(limit, len(r))])
		}
		if text == "" {
			continue
		}
		b.WriteString(segmentStyle(seg).Render(text))
	}
	return b.String()
}

// renderLine applies the style for a non-narrative line.
func renderLine(line string, kind lineKind) string {
	switch kind {
	case kindHeading:
		return styleHeading.Render(line)
	case kindMenu:
		return styleMenu.Render(line)
	case kindInput:
		return stylePlayerInput.Render(line)
	case kindSystem:
		return styleSystem.Render("[" + line + "]")
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}
