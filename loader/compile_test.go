package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/fabula/types"
)

// runLua executes src in a fresh sandboxed VM and compiles the result.
func runLua(t *testing.T, src string) (*types.Defs, error) {
	t.Helper()
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	if err := L.DoString(src); err != nil {
		return nil, err
	}
	return coll.flush()
}

func TestCompile_Entity(t *testing.T) {
	defs, err := runLua(t, `
Item "bell" {
  title = "Bell",
  description = "A bronze bell.",
  requires = "player.awake",
  impact = { "+rung", "#player.startle" },
  limit = 3,
  tags = { "heavy", "loud" },
  descriptors = {
    "Plain.",
    Descriptor {
      text = "Nested.",
      correlation = "else",
      limit = 1,
      descriptors = { Descriptor { text = "Deeper.", impact = "-loud" } },
    },
  },
  combinations = { Combination "rope" { text = "Tied.", requires = "!rung", limit = 1 } },
  on = { On "ring" { requires = "!rung", impact = "+rung" } },
}
`)
	require.NoError(t, err)
	require.Len(t, defs.Items, 1)

	assert.Equal(t, types.EntityDef{
		Key:         "bell",
		Title:       "Bell",
		Description: "A bronze bell.",
		Requires:    "player.awake",
		Impact:      "+rung,#player.startle",
		Limit:       3,
		Tags:        []string{"heavy", "loud"},
		Descriptors: []types.DescriptorDef{
			{Text: "Plain."},
			{
				Text:        "Nested.",
				Correlation: "else",
				Limit:       1,
				Descriptors: []types.DescriptorDef{{Text: "Deeper.", Impact: "-loud"}},
			},
		},
		Combinations: []types.CombinationDef{{With: "rope", Text: "Tied.", Requires: "!rung", Limit: 1}},
		Handlers:     []types.HandlerDef{{Event: "ring", Requires: "!rung", Impact: "+rung"}},
	}, defs.Items[0])
}

func TestCompile_LocationAndInteractions(t *testing.T) {
	defs, err := runLua(t, `
Location "hall" {
  parent = "house",
  interactions = {
    Interaction { title = "Knock" },
    { key = "lever", title = "Pull" },
  },
}
`)
	require.NoError(t, err)
	require.Len(t, defs.Locations, 1)
	loc := defs.Locations[0]
	assert.Equal(t, "house", loc.Parent)
	assert.Equal(t, []types.EntityDef{{Title: "Knock"}, {Key: "lever", Title: "Pull"}}, loc.Interactions)
}

func TestCompile_GameAndPlayerMerge(t *testing.T) {
	defs, err := runLua(t, `
Game { title = "One", start = "a" }
Game { title = "Two" }
Player { tags = { "x" } }
Player { items = { "y" }, on = { On "e" { impact = "+z" } } }
`)
	require.NoError(t, err)
	assert.Equal(t, "Two", defs.Game.Title)
	assert.Equal(t, "a", defs.Game.Start)
	assert.Equal(t, []string{"x"}, defs.Player.Tags)
	assert.Equal(t, []string{"y"}, defs.Player.Items)
	assert.Len(t, defs.Player.Handlers, 1)
}

func TestCompile_FlushResets(t *testing.T) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	coll := &collector{}
	registerAPI(L, coll)

	require.NoError(t, L.DoString(`Item "a" {}`))
	first, err := coll.flush()
	require.NoError(t, err)
	assert.Len(t, first.Items, 1)

	second, err := coll.flush()
	require.NoError(t, err)
	assert.Empty(t, second.Items)
}

func TestCompile_TypeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"tag not a string", `Item "a" { tags = { true } }`, "tags[1]: expected string"},
		{"impact number", `Item "a" { impact = 3 }`, "impact: expected string or list"},
		{"descriptor number", `Item "a" { descriptors = { 1 } }`, "descriptors[1]"},
		{"interaction string", `Location "a" { interactions = { "x" } }`, "interactions[1]: expected table"},
		{"combination string", `Item "a" { combinations = { "b" } }`, "combinations[1]: expected table"},
		{"handler string", `Player { on = { "x" } }`, "on[1]: expected table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runLua(t, tt.src)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSandbox_RemovesDangerousGlobals(t *testing.T) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "rawset", "collectgarbage", "os", "io"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), name)
	}
	math, ok := L.GetGlobal("math").(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, lua.LNil, math.RawGetString("randomseed"))
}
