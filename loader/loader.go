package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/fabula/types"
)

// Load reads every .lua, .yaml and .yml file in dir, merges them into one
// world model in file order, validates it and returns it. Lua files share
// one sandboxed VM, which is discarded after loading.
func Load(dir string) (*types.Defs, error) {
	return LoadWithLogger(dir, slog.Default())
}

// LoadWithLogger is Load with validation warnings written to log.
func LoadWithLogger(dir string, log *slog.Logger) (*types.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && isGameFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .lua or .yaml files found in %s", dir)
	}
	files = sortedGameFiles(files)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	defs := &types.Defs{}
	for _, f := range files {
		path := filepath.Join(dir, f)
		var part *types.Defs
		if strings.HasSuffix(f, ".lua") {
			if err := L.DoFile(path); err != nil {
				return nil, fmt.Errorf("executing %s: %w", f, err)
			}
			part, err = coll.flush()
		} else {
			part, err = loadYAML(path)
		}
		if err != nil {
			return nil, fmt.Errorf("compiling %s: %w", f, err)
		}
		merge(defs, part)
		log.Debug("loaded game file", "file", f,
			"locations", len(part.Locations), "items", len(part.Items))
	}

	if err := validate(defs, log); err != nil {
		return nil, err
	}
	return defs, nil
}

func isGameFile(name string) bool {
	switch filepath.Ext(name) {
	case ".lua", ".yaml", ".yml":
		return true
	}
	return false
}

// sortedGameFiles puts game.lua, game.yaml and game.yml first and sorts
// the rest alphabetically.
func sortedGameFiles(files []string) []string {
	var game, others []string
	for _, f := range files {
		if strings.TrimSuffix(f, filepath.Ext(f)) == "game" {
			game = append(game, f)
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(game)
	sort.Strings(others)
	return append(game, others...)
}

// merge appends part to defs. Non-empty game fields of later files win.
func merge(defs, part *types.Defs) {
	g := part.Game
	if g.Title != "" {
		defs.Game.Title = g.Title
	}
	if g.Author != "" {
		defs.Game.Author = g.Author
	}
	if g.Version != "" {
		defs.Game.Version = g.Version
	}
	if g.Start != "" {
		defs.Game.Start = g.Start
	}
	if g.Intro != "" {
		defs.Game.Intro = g.Intro
	}

	defs.Player.Tags = append(defs.Player.Tags, part.Player.Tags...)
	defs.Player.Items = append(defs.Player.Items, part.Player.Items...)
	defs.Player.Handlers = append(defs.Player.Handlers, part.Player.Handlers...)
	defs.Locations = append(defs.Locations, part.Locations...)
	defs.Items = append(defs.Items, part.Items...)
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed the Lua RNG; markup randomness is the
	// engine's.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
