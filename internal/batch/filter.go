package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const defaultFilterTimeout = 200 * time.Millisecond

// Filter evaluates an inline Lua predicate against each discovered file.
// The predicate sees the globals name, ext and size; a false result
// excludes the file from conversion. The state is sandboxed: only the
// base, string, table and math libraries are opened and each evaluation
// is bounded by a timeout.
type Filter struct {
	predicate string
	timeout   time.Duration
}

// NewFilter compiles the inline predicate once to surface syntax errors
// at configuration time. An empty inline returns a nil filter, which
// keeps every file.
func NewFilter(inline string, timeout time.Duration) (*Filter, error) {
	if inline == "" {
		return nil, nil
	}
	if timeout <= 0 {
		timeout = defaultFilterTimeout
	}
	pred := wrapPredicate(inline)
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if _, err := L.LoadString(pred); err != nil {
		return nil, fmt.Errorf("invalid filter predicate: %v", err)
	}
	return &Filter{predicate: pred, timeout: timeout}, nil
}

// wrapPredicate turns a bare expression into a return statement, matching
// the inline form users write in the config.
func wrapPredicate(code string) string {
	if strings.Contains(code, "return") {
		return code
	}
	return "return (" + code + ")"
}

// Keep reports whether src passes the predicate.
func (f *Filter) Keep(src SourceFile) (bool, error) {
	if f == nil {
		return true, nil
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSandboxLibs(L)

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("name", lua.LString(src.Name))
	L.SetGlobal("ext", lua.LString(strings.TrimPrefix(src.Ext, ".")))
	L.SetGlobal("size", lua.LNumber(src.Size))

	if err := L.DoString(f.predicate); err != nil {
		return false, fmt.Errorf("filter predicate: %v", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

func openSandboxLibs(L *lua.LState) {
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
}
