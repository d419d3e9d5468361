package app

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tickcon/internal/script"
)

// worldModule exposes the world to scripts as the global table "world".
// Its functions only work while a script command is running.
func worldModule(e *script.Engine) map[string]lua.LGFunction {
	current := func(L *lua.LState) *World {
		w, ok := e.Current().(*World)
		if !ok || w == nil {
			L.RaiseError("world is only available inside a command")
			return nil
		}
		return w
	}

	return map[string]lua.LGFunction{
		"spawn": func(L *lua.LState) int {
			w := current(L)
			ent, err := w.Spawn(L.CheckString(1),
				float64(L.OptNumber(2, 0)), float64(L.OptNumber(3, 0)),
				float64(L.OptNumber(4, 0)), float64(L.OptNumber(5, 0)),
				L.OptInt(6, 0))
			if err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
			L.Push(lua.LNumber(ent.ID))
			return 1
		},
		"despawn": func(L *lua.LState) int {
			removed, err := current(L).Despawn(L.CheckInt(1))
			if err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
			L.Push(lua.LNumber(len(removed)))
			return 1
		},
		"move": func(L *lua.LState) int {
			if err := current(L).Move(L.CheckInt(1), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))); err != nil {
				L.RaiseError("%s", err.Error())
			}
			return 0
		},
		"count": func(L *lua.LState) int {
			L.Push(lua.LNumber(current(L).Len()))
			return 1
		},
		"ticks": func(L *lua.LState) int {
			L.Push(lua.LNumber(current(L).Ticks()))
			return 1
		},
		"entities": func(L *lua.LState) int {
			list := L.NewTable()
			for _, ent := range current(L).Entities() {
				t := L.NewTable()
				t.RawSetString("id", lua.LNumber(ent.ID))
				t.RawSetString("name", lua.LString(ent.Name))
				t.RawSetString("x", lua.LNumber(ent.X))
				t.RawSetString("y", lua.LNumber(ent.Y))
				t.RawSetString("parent", lua.LNumber(ent.Parent))
				list.Append(t)
			}
			L.Push(list)
			return 1
		},
	}
}
