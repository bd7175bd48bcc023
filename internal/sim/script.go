package sim

import (
	"context"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// RunScript runs a Lua scenario against rt. The script sees:
//
//	call(contract, method [, argsJSON]) -> resultJSON
//	view(contract, method [, argsJSON]) -> resultJSON
//	log(...)                            -> writes a line to out
//
// Only the base, table and string libraries are opened.
func RunScript(ctx context.Context, rt *Runtime, signer, src string, out io.Writer) error {
	L := newSandboxState()
	defer L.Close()
	L.SetContext(ctx)

	invoke := func(view bool) lua.LGFunction {
		return func(L *lua.LState) int {
			id := L.CheckString(1)
			method := L.CheckString(2)
			var args []byte
			if L.GetTop() >= 3 {
				args = []byte(L.CheckString(3))
			}
			var (
				o   Outcome
				err error
			)
			if view {
				o, err = rt.View(ctx, id, method, args)
			} else {
				o, err = rt.Call(ctx, signer, id, method, args)
			}
			if err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
			L.Push(lua.LString(string(o.Result)))
			return 1
		}
	}
	L.SetGlobal("call", L.NewFunction(invoke(false)))
	L.SetGlobal("view", L.NewFunction(invoke(true)))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		_, _ = fmt.Fprintln(out, strings.Join(parts, " "))
		return 0
	}))

	if err := L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib(lua.BaseLibName, lua.OpenBase)
	openLib(lua.TabLibName, lua.OpenTable)
	openLib(lua.StringLibName, lua.OpenString)
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
