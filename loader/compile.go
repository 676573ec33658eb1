// Package loader loads Lua and YAML game content into the raw world model.
// The Lua VM is discarded after loading, so no Lua runs during play.
package loader

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/fabula/types"
)

// rawEntity holds a keyed location or item table before compilation.
type rawEntity struct {
	key   string
	table *lua.LTable
}

// collector accumulates Lua definitions while a file executes.
type collector struct {
	games     []*lua.LTable
	players   []*lua.LTable
	locations []rawEntity
	items     []rawEntity
}

// flush compiles everything collected since the last flush and resets the
// collector.
func (c *collector) flush() (*types.Defs, error) {
	defer func() { *c = collector{} }()

	defs := &types.Defs{}
	for _, tbl := range c.games {
		merge(defs, &types.Defs{Game: compileGame(tbl)})
	}
	for _, tbl := range c.players {
		p, err := compilePlayer(tbl)
		if err != nil {
			return nil, fmt.Errorf("compiling player: %w", err)
		}
		merge(defs, &types.Defs{Player: p})
	}
	for _, raw := range c.locations {
		loc, err := compileLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling location %s: %w", raw.key, err)
		}
		defs.Locations = append(defs.Locations, loc)
	}
	for _, raw := range c.items {
		item, err := compileEntity(raw.key, raw.table)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.key, err)
		}
		defs.Items = append(defs.Items, item)
	}
	return defs, nil
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// elements returns the array part of tbl.
func elements(tbl *lua.LTable) []lua.LValue {
	if tbl == nil {
		return nil
	}
	n := tbl.MaxN()
	out := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, tbl.RawGetInt(i))
	}
	return out
}

// getStrings returns a string list field.
func getStrings(tbl *lua.LTable, key string) ([]string, error) {
	var out []string
	for i, v := range elements(getTable(tbl, key)) {
		s, ok := v.(lua.LString)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected string, got %s", key, i+1, v.Type())
		}
		out = append(out, string(s))
	}
	return out, nil
}

// getImpact accepts either a directive string or a list of directives.
func getImpact(tbl *lua.LTable) (string, error) {
	switch v := tbl.RawGetString("impact").(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LTable:
		parts, err := getStrings(tbl, "impact")
		if err != nil {
			return "", err
		}
		return strings.Join(parts, ","), nil
	case *lua.LNilType:
		return "", nil
	default:
		return "", fmt.Errorf("impact: expected string or list, got %s", v.Type())
	}
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
}

func compilePlayer(tbl *lua.LTable) (types.PlayerDef, error) {
	var p types.PlayerDef
	var err error
	if p.Tags, err = getStrings(tbl, "tags"); err != nil {
		return p, err
	}
	if p.Items, err = getStrings(tbl, "items"); err != nil {
		return p, err
	}
	p.Handlers, err = compileHandlers(getTable(tbl, "on"))
	return p, err
}

func compileLocation(raw rawEntity) (types.LocationDef, error) {
	loc := types.LocationDef{Parent: getString(raw.table, "parent")}
	var err error
	if loc.EntityDef, err = compileEntity(raw.key, raw.table); err != nil {
		return loc, err
	}
	for i, v := range elements(getTable(raw.table, "interactions")) {
		tbl, ok := v.(*lua.LTable)
		if !ok {
			return loc, fmt.Errorf("interactions[%d]: expected table, got %s", i+1, v.Type())
		}
		in, err := compileEntity(getString(tbl, "key"), tbl)
		if err != nil {
			return loc, fmt.Errorf("interactions[%d]: %w", i+1, err)
		}
		loc.Interactions = append(loc.Interactions, in)
	}
	return loc, nil
}

// compileEntity reads the fields shared by locations, interactions and
// items.
func compileEntity(key string, tbl *lua.LTable) (types.EntityDef, error) {
	e := types.EntityDef{
		Key:         key,
		Title:       getString(tbl, "title"),
		Description: getString(tbl, "description"),
		Requires:    getString(tbl, "requires"),
		Limit:       getInt(tbl, "limit"),
	}
	var err error
	if e.Impact, err = getImpact(tbl); err != nil {
		return e, err
	}
	if e.Tags, err = getStrings(tbl, "tags"); err != nil {
		return e, err
	}
	if e.Descriptors, err = compileDescriptors(getTable(tbl, "descriptors")); err != nil {
		return e, err
	}
	if e.Combinations, err = compileCombinations(getTable(tbl, "combinations")); err != nil {
		return e, err
	}
	if e.Handlers, err = compileHandlers(getTable(tbl, "on")); err != nil {
		return e, err
	}
	return e, nil
}

// compileDescriptors accepts descriptor tables and bare strings, which
// become unconditional fragments.
func compileDescriptors(tbl *lua.LTable) ([]types.DescriptorDef, error) {
	var out []types.DescriptorDef
	for i, v := range elements(tbl) {
		switch d := v.(type) {
		case lua.LString:
			out = append(out, types.DescriptorDef{Text: string(d)})
		case *lua.LTable:
			desc, err := compileDescriptor(d)
			if err != nil {
				return nil, fmt.Errorf("descriptors[%d]: %w", i+1, err)
			}
			out = append(out, desc)
		default:
			return nil, fmt.Errorf("descriptors[%d]: expected string or table, got %s", i+1, v.Type())
		}
	}
	return out, nil
}

func compileDescriptor(tbl *lua.LTable) (types.DescriptorDef, error) {
	d := types.DescriptorDef{
		Text:        getString(tbl, "text"),
		Requires:    getString(tbl, "requires"),
		Limit:       getInt(tbl, "limit"),
		Correlation: getString(tbl, "correlation"),
	}
	var err error
	if d.Impact, err = getImpact(tbl); err != nil {
		return d, err
	}
	d.Descriptors, err = compileDescriptors(getTable(tbl, "descriptors"))
	return d, err
}

func compileCombinations(tbl *lua.LTable) ([]types.CombinationDef, error) {
	var out []types.CombinationDef
	for i, v := range elements(tbl) {
		ct, ok := v.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("combinations[%d]: expected table, got %s", i+1, v.Type())
		}
		c := types.CombinationDef{
			With:     getString(ct, "with"),
			Text:     getString(ct, "text"),
			Requires: getString(ct, "requires"),
			Limit:    getInt(ct, "limit"),
		}
		var err error
		if c.Impact, err = getImpact(ct); err != nil {
			return nil, fmt.Errorf("combinations[%d]: %w", i+1, err)
		}
		if c.Descriptors, err = compileDescriptors(getTable(ct, "descriptors")); err != nil {
			return nil, fmt.Errorf("combinations[%d]: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func compileHandlers(tbl *lua.LTable) ([]types.HandlerDef, error) {
	var out []types.HandlerDef
	for i, v := range elements(tbl) {
		ht, ok := v.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("on[%d]: expected table, got %s", i+1, v.Type())
		}
		h := types.HandlerDef{
			Event:    getString(ht, "event"),
			Requires: getString(ht, "requires"),
		}
		var err error
		if h.Impact, err = getImpact(ht); err != nil {
			return nil, fmt.Errorf("on[%d]: %w", i+1, err)
		}
		out = append(out, h)
	}
	return out, nil
}
