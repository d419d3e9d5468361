package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tickcon/internal/logging"
)

// DefaultTimeout bounds a single script call.
const DefaultTimeout = time.Second

// Engine owns one Lua state shared by every loaded script.
//
// gopher-lua states are not goroutine-safe; the engine's mutex
// serialises all use.
type Engine struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	logger  *logging.Logger

	commands []Definition
	loading  string
	current  any
	output   []string
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the limit for one script call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the engine's logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with a sandboxed Lua state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: DefaultTimeout,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.L.SetGlobal("command", e.L.NewFunction(e.luaCommand))
	e.L.SetGlobal("print", e.L.NewFunction(e.luaPrint))
	return e
}

// openSafeLibraries opens the libraries scripts may use. io, os, debug
// and package are left out, along with the functions that load code.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Module exposes Go functions to scripts as a global table.
func (e *Engine) Module(name string, funcs map[string]lua.LGFunction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.L.SetGlobal(name, e.L.SetFuncs(e.L.NewTable(), funcs))
}

// Current returns the host state of the command being run, or nil
// outside a command. Module functions call it.
func (e *Engine) Current() any {
	return e.current
}

// LoadString runs a chunk of Lua and returns the commands it defined.
// name identifies the chunk in errors.
func (e *Engine) LoadString(name, code string) ([]Definition, error) {
	return e.load(name, func() error { return e.L.DoString(code) })
}

// LoadFile runs a Lua file and returns the commands it defined.
func (e *Engine) LoadFile(path string) ([]Definition, error) {
	return e.load(path, func() error { return e.L.DoFile(path) })
}

func (e *Engine) load(name string, run func() error) ([]Definition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	before := len(e.commands)
	e.loading = name
	defer func() { e.loading = "" }()

	if err := e.guarded(run); err != nil {
		e.commands = e.commands[:before]
		return nil, &LoadError{File: name, Err: err}
	}
	defs := append([]Definition(nil), e.commands[before:]...)
	e.logger.Debug("loaded %s: %d commands", name, len(defs))
	return defs, nil
}

// Commands returns every command defined so far.
func (e *Engine) Commands() []Definition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Definition(nil), e.commands...)
}

// Run calls a command's run function with args. state is visible to
// module functions through Current for the duration of the call. The
// returned text is empty when run returned nil.
func (e *Engine) Run(def Definition, state any, args []string) (text string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrClosed
	}

	e.current = state
	e.output = e.output[:0]
	defer func() { e.current = nil }()

	list := e.L.NewTable()
	for _, a := range args {
		list.Append(lua.LString(a))
	}

	var ret lua.LValue = lua.LNil
	err = e.guarded(func() error {
		if err := e.L.CallByParam(lua.P{Fn: def.run, NRet: 1, Protect: true}, list); err != nil {
			return err
		}
		ret = e.L.Get(-1)
		e.L.Pop(1)
		return nil
	})
	if err != nil {
		return "", err
	}

	parts := append([]string(nil), e.output...)
	switch v := ret.(type) {
	case *lua.LNilType:
	case lua.LString, lua.LNumber, lua.LBool:
		parts = append(parts, v.String())
	default:
		return "", fmt.Errorf("%s returned a %s, want string or nil", def.Name, ret.Type())
	}
	return strings.Join(parts, "\n"), nil
}

// guarded runs fn with the call timeout and turns panics into errors.
func (e *Engine) guarded(fn func() error) (err error) {
	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.L.SetContext(ctx)
		defer e.L.RemoveContext()
		defer func() {
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
			}
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the Lua state. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.L.Close()
	return nil
}

// luaPrint collects output for the running command. Outside a command
// it goes to the log.
func (e *Engine) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	line := strings.Join(parts, "\t")
	if e.loading != "" {
		e.logger.Info("%s: %s", e.loading, line)
		return 0
	}
	e.output = append(e.output, line)
	return 0
}
