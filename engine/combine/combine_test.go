package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/fabula/engine/errs"
	"github.com/nathoo/fabula/engine/world"
	"github.com/nathoo/fabula/types"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.Build(&types.Defs{
		Game: types.GameDef{Title: "T", Start: "shed"},
		Locations: []types.LocationDef{
			{
				EntityDef: types.EntityDef{
					Key: "shed",
					Combinations: []types.CombinationDef{
						{With: "axe", Text: "You chop the door.", Impact: "+broken"},
					},
				},
			},
		},
		Items: []types.EntityDef{
			{Key: "flint", Combinations: []types.CombinationDef{
				{With: "steel", Text: "Sparks fly.", Requires: "!player.wet"},
			}},
			{Key: "steel"},
			{Key: "axe"},
			{Key: "rope", Combinations: []types.CombinationDef{
				{With: "hook", Requires: "ghost.present"},
			}},
			{Key: "hook"},
		},
	})
	require.NoError(t, err)
	return w
}

func TestFind_Symmetric(t *testing.T) {
	w := testWorld(t)
	flint, steel := w.Resolve("flint"), w.Resolve("steel")

	c1, owner1, err := Find(w, flint, steel)
	require.NoError(t, err)
	c2, owner2, err := Find(w, steel, flint)
	require.NoError(t, err)

	require.NotNil(t, c1)
	assert.Same(t, c1, c2)
	assert.Same(t, flint, owner1)
	assert.Same(t, flint, owner2)
}

func TestFind_ItemWithLocation(t *testing.T) {
	w := testWorld(t)
	axe, shed := w.Resolve("axe"), w.Resolve("shed")

	c, owner, err := Find(w, axe, shed)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Same(t, shed, owner)
	assert.Equal(t, "axe", c.With)
}

func TestFind_Unavailable(t *testing.T) {
	w := testWorld(t)
	w.Player().Tags.Add("wet")

	c, owner, err := Find(w, w.Resolve("steel"), w.Resolve("flint"))
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, owner)
}

func TestFind_NoCombination(t *testing.T) {
	w := testWorld(t)
	c, _, err := Find(w, w.Resolve("axe"), w.Resolve("steel"))
	require.NoError(t, err)
	assert.Nil(t, c)

	c, _, err = Find(w, nil, w.Resolve("steel"))
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFind_PropagatesErrors(t *testing.T) {
	w := testWorld(t)
	_, _, err := Find(w, w.Resolve("hook"), w.Resolve("rope"))
	assert.ErrorIs(t, err, errs.ErrUnknownReference)
}

func TestFind_BothSidesDeclare(t *testing.T) {
	w, err := world.Build(&types.Defs{
		Game:      types.GameDef{Title: "T", Start: "yard"},
		Locations: []types.LocationDef{{EntityDef: types.EntityDef{Key: "yard"}}},
		Items: []types.EntityDef{
			{Key: "oil", Combinations: []types.CombinationDef{{With: "lamp", Text: "You fill the lamp."}}},
			{Key: "lamp", Combinations: []types.CombinationDef{{With: "oil", Text: "The lamp drinks the oil."}}},
		},
	})
	require.NoError(t, err)
	oil, lamp := w.Resolve("oil"), w.Resolve("lamp")

	c1, owner1, err := Find(w, oil, lamp)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Same(t, oil, owner1)
	assert.Same(t, oil.Combinations[0], c1)

	c2, owner2, err := Find(w, lamp, oil)
	require.NoError(t, err)
	require.NotNil(t, c2)
	assert.Same(t, lamp, owner2)
	assert.Same(t, lamp.Combinations[0], c2)
}
