package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathoo/fabula/engine"
	"github.com/nathoo/fabula/types"
)

// testDefs returns minimal game definitions for CLI testing.
func testDefs() *types.Defs {
	return &types.Defs{
		Game: types.GameDef{
			Title:   "Test Game",
			Author:  "Test",
			Version: "1.0",
			Start:   "hall",
			Intro:   "Welcome [fg]{red}to the test.",
		},
		Player: types.PlayerDef{Items: []string{"lamp"}},
		Locations: []types.LocationDef{
			{
				EntityDef: types.EntityDef{Key: "hall", Title: "Hall", Description: "A grand hall."},
				Interactions: []types.EntityDef{
					{Title: "Ring bell", Description: "[c]{Ding.}{Dong.}", Impact: "+hall.rung"},
				},
			},
			{
				EntityDef: types.EntityDef{Key: "garden", Title: "Garden", Description: "A peaceful garden."},
				Parent:    "hall",
				Interactions: []types.EntityDef{
					{Title: "Smell roses", Description: "Sweet."},
				},
			},
		},
		Items: []types.EntityDef{
			{Key: "lamp", Title: "Brass Lamp"},
		},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	eng, err := engine.New(testDefs(), engine.WithSeed(1))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	var out bytes.Buffer
	c := &CLI{
		Engine: eng,
		In:     strings.NewReader(input),
		Out:    &out,
	}
	return c, &out
}

func TestCLI_IntroAndStartingLocation(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Welcome to the test.") {
		t.Errorf("expected intro text with markup expanded, got:\n%s", output)
	}
	if !strings.Contains(output, "A grand hall.") {
		t.Error("expected starting location description in output")
	}
	if !strings.Contains(output, "  1. Garden\n  2. Ring bell\n") {
		t.Errorf("expected numbered menu, got:\n%s", output)
	}
}

func TestCLI_SelectByNumber(t *testing.T) {
	c, out := newTestCLI(t, "1\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "A peaceful garden.") {
		t.Error("expected garden description after choosing it")
	}
	if !strings.Contains(output, "  1. Smell roses\n  2. Back\n") {
		t.Errorf("expected garden menu, got:\n%s", output)
	}
}

func TestCLI_SelectByTitleAndBack(t *testing.T) {
	c, out := newTestCLI(t, "garden\nback\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "A peaceful garden.") {
		t.Error("expected garden description")
	}
	if strings.Count(output, "A grand hall.") != 2 {
		t.Errorf("expected hall described twice (start + back), got:\n%s", output)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"/quit", "/trace", "inventory", "use <thing> with <thing>"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
	if strings.Contains(output, "/save") {
		t.Error("help should not offer /save")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command: /bogus") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\n2\n/trace\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[[trace] Impacts: +hall.rung]") {
		t.Errorf("expected impact trace, got:\n%s", output)
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "2\n/state\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"[Turn: 1]", "[Focus: hall]", "[Seed: 1 (draws: 0)]", "[Items: lamp]", "[hall tags: rung]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in state output, got:\n%s", want, output)
		}
	}
}

func TestCLI_MenuCommand(t *testing.T) {
	c, out := newTestCLI(t, "/menu\n/quit\n")
	c.Run()

	if strings.Count(out.String(), "1. Garden") != 2 {
		t.Error("expected /menu to repeat the menu")
	}
}

func TestCLI_EmptyInput(t *testing.T) {
	c, out := newTestCLI(t, "\n\n/quit\n")
	c.Run()

	// Empty lines are skipped without asking the engine.
	if strings.Contains(out.String(), "What do you want to do?") {
		t.Error("empty lines should be silently skipped by CLI")
	}
}

func TestCLI_CommentsAndEcho(t *testing.T) {
	c, out := newTestCLI(t, "# ring it\n2\n/quit\n")
	c.EchoInput = true
	c.Run()

	output := out.String()
	if strings.Contains(output, "ring it") {
		t.Error("comment lines should be skipped")
	}
	if !strings.Contains(output, "> 2\n") {
		t.Errorf("expected echoed input, got:\n%s", output)
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	c, out := newTestCLI(t, "2\nagain\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Ding.") || !strings.Contains(output, "Dong.") {
		t.Errorf("expected the bell to cycle on repeat, got:\n%s", output)
	}
}

func TestCLI_G_RepeatsLastCommand(t *testing.T) {
	c, out := newTestCLI(t, "look\ng\n/quit\n")
	c.Run()

	count := strings.Count(out.String(), "A grand hall.")
	if count != 3 {
		t.Errorf("expected 'A grand hall.' 3 times (start + look + g), got %d", count)
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}

func TestCLI_Wrap(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Width = 10
	c.Run()

	if !strings.Contains(out.String(), "A grand\nhall.") {
		t.Errorf("expected wrapped description, got:\n%s", out.String())
	}
}
