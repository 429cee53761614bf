// Package luacode executes Lua code fragments in-process.
//
// Code fragments with a "lua" shebang run on an embedded, sandboxed
// gopher-lua state instead of spawning an external interpreter. Only
// the base, table, string, and math libraries are opened; io, os,
// debug, and package stay closed, and print is redirected into the
// captured output. Execution honors context cancellation through the
// state's context binding.
package luacode

import (
	"context"
	"fmt"
	"path"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// IsLuaShebang reports whether a shebang designates the embedded Lua
// runtime ("lua", "#!/usr/bin/env lua", "lua5.4", ...).
func IsLuaShebang(shebang string) bool {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(shebang), "#!"))
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	prog := path.Base(fields[0])
	if prog == "env" && len(fields) > 1 {
		prog = path.Base(fields[1])
	}
	return strings.HasPrefix(prog, "lua")
}

// Run executes Lua source on a fresh sandboxed state and returns
// everything the script printed. A runtime error, syntax error, or
// context cancellation returns an error with empty output.
func Run(ctx context.Context, source string) (string, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // open selectively below
	})
	defer L.Close()
	L.SetContext(ctx)

	openSafeLibraries(L)
	sandbox(L)

	var out strings.Builder
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				out.WriteByte('\t')
			}
			out.WriteString(L.ToStringMeta(L.Get(i)).String())
		}
		out.WriteByte('\n')
		return 0
	}))

	if err := doWithRecovery(L, source); err != nil {
		return "", err
	}
	return out.String(), nil
}

// openSafeLibraries opens only safe Lua standard libraries.
// io, os, debug, and package are intentionally not opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes base functions that could reach the file system or
// load arbitrary chunks.
func sandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// doWithRecovery executes the source with panic recovery.
func doWithRecovery(L *lua.LState, source string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return L.DoString(source)
}
