package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.games = append(coll.games, L.CheckTable(1))
		return 0
	}))

	// Player { tags = {...}, items = {...}, on = {...} }
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		coll.players = append(coll.players, L.CheckTable(1))
		return 0
	}))

	// Location "key" { ... }: curried, Location("key") returns a function
	// that takes a table.
	L.SetGlobal("Location", L.NewFunction(curried(func(key string, tbl *lua.LTable) {
		coll.locations = append(coll.locations, rawEntity{key: key, table: tbl})
	})))

	// Item "key" { ... }: curried.
	L.SetGlobal("Item", L.NewFunction(curried(func(key string, tbl *lua.LTable) {
		coll.items = append(coll.items, rawEntity{key: key, table: tbl})
	})))

	// Interaction { ... } and Descriptor { ... } are pass-through; they
	// only make content read better.
	L.SetGlobal("Interaction", L.NewFunction(passThrough()))
	L.SetGlobal("Descriptor", L.NewFunction(passThrough()))

	// Combination "other_key" { ... }: returns the table with "with" set.
	L.SetGlobal("Combination", L.NewFunction(tagged("with")))

	// On "event" { requires = "...", impact = "..." }: returns the table
	// with "event" set.
	L.SetGlobal("On", L.NewFunction(tagged("event")))
}

func curried(fn func(key string, tbl *lua.LTable)) lua.LGFunction {
	return func(L *lua.LState) int {
		key := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			fn(key, L.CheckTable(1))
			return 0
		}))
		return 1
	}
}

func passThrough() lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}
}

func tagged(field string) lua.LGFunction {
	return func(L *lua.LState) int {
		value := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString(field, lua.LString(value))
			L.Push(tbl)
			return 1
		}))
		return 1
	}
}
