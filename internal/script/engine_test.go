package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/renderer"
)

const greet = `
command{
    name = "greet",
    aliases = {"hi"},
    usage = "greet <name>",
    short = "Say hello",
    args = 1,
    run = function(args)
        return "hello, " .. args[1]
    end,
}
`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestLoadStringDefinesCommands(t *testing.T) {
	e := newTestEngine(t)

	defs, err := e.LoadString("greet.lua", greet)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	d := defs[0]
	if d.Name != "greet" || d.Args != 1 || d.Short != "Say hello" || d.Source != "greet.lua" {
		t.Errorf("definition = %+v", d)
	}
	if len(d.Aliases) != 1 || d.Aliases[0] != "hi" {
		t.Errorf("aliases = %v", d.Aliases)
	}
}

func TestLoadStringErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"syntax", "command{", "greet"},
		{"no name", `command{run = function() end}`, "single word"},
		{"spaced name", `command{name = "a b", run = function() end}`, "single word"},
		{"no run", `command{name = "x"}`, "no run function"},
		{"no io", `io.write("x")`, "nil"},
		{"no require", `require("os")`, "non-function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			_, err := e.LoadString("greet", tt.code)
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *LoadError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
			if n := len(e.Commands()); n != 0 {
				t.Errorf("failed load kept %d commands", n)
			}
		})
	}
}

func TestRun(t *testing.T) {
	e := newTestEngine(t)
	defs, err := e.LoadString("t", `
command{name = "sum", run = function(args)
    local n = 0
    for _, a in ipairs(args) do n = n + tonumber(a) end
    return n
end}
command{name = "quiet", run = function() end}
command{name = "chatty", run = function()
    print("one")
    print("two", 3)
    return "done"
end}
command{name = "fail", run = function() error("nope") end}
command{name = "table", run = function() return {} end}
`)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]Definition{}
	for _, d := range defs {
		byName[d.Name] = d
	}

	if got, err := e.Run(byName["sum"], nil, []string{"1", "2", "3"}); err != nil || got != "6" {
		t.Errorf("sum = %q, %v", got, err)
	}
	if got, err := e.Run(byName["quiet"], nil, nil); err != nil || got != "" {
		t.Errorf("quiet = %q, %v", got, err)
	}
	if got, err := e.Run(byName["chatty"], nil, nil); err != nil || got != "one\ntwo\t3\ndone" {
		t.Errorf("chatty = %q, %v", got, err)
	}
	if _, err := e.Run(byName["fail"], nil, nil); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("fail err = %v", err)
	}
	if _, err := e.Run(byName["table"], nil, nil); err == nil {
		t.Error("table result should fail")
	}
}

func TestRunTimeout(t *testing.T) {
	e := newTestEngine(t, WithTimeout(50*time.Millisecond))
	defs, err := e.LoadString("t", `command{name = "spin", run = function() while true do end end}`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Run(defs[0], nil, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestModuleSeesCurrentState(t *testing.T) {
	e := newTestEngine(t)
	type counter struct{ n int }

	e.Module("host", map[string]lua.LGFunction{
		"bump": func(L *lua.LState) int {
			c, ok := e.Current().(*counter)
			if !ok {
				L.RaiseError("no host state")
				return 0
			}
			c.n += L.OptInt(1, 1)
			L.Push(lua.LNumber(c.n))
			return 1
		},
	})
	defs, err := e.LoadString("t", `command{name = "bump", run = function(args) return host.bump(tonumber(args[1])) end}`)
	if err != nil {
		t.Fatal(err)
	}

	c := &counter{}
	if got, err := e.Run(defs[0], c, []string{"5"}); err != nil || got != "5" {
		t.Errorf("bump = %q, %v", got, err)
	}
	if e.Current() != nil {
		t.Error("Current should be nil after Run")
	}
	if _, err := e.Run(defs[0], nil, []string{"1"}); err == nil {
		t.Error("expected error without host state")
	}
}

func TestClosedEngine(t *testing.T) {
	e := NewEngine()
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := e.LoadString("x", greet); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestInstallOnConsole(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.LoadString("greet.lua", greet); err != nil {
		t.Fatal(err)
	}

	q := console.NewQueue()
	rec := renderer.NewRecorder()
	c := console.New(command.NewRegistry(), dispatcher.NewWithDefaults(),
		console.WithSource(q), console.WithSink(rec))
	if err := e.Install(c); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()

	q.Line("hi bob")
	q.Line("greet")
	c.Tick(nil)

	out := rec.Outcomes()
	if len(out) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(out))
	}
	if out[0].Kind != dispatcher.OutcomeHandled || out[0].Text != "hello, bob" {
		t.Errorf("hi bob = %v %q", out[0].Kind, out[0].Text)
	}
	if out[1].Kind != dispatcher.OutcomeParseFailed || !strings.Contains(out[1].Text, "greet <name>") {
		t.Errorf("greet = %v %q", out[1].Kind, out[1].Text)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.lua", `command{name = "bee", run = function() return "b" end}`)
	write("a.lua", `command{name = "ay", run = function() return "a" end}`)
	write("broken.lua", `command{`)
	write("notes.txt", "ignored")

	e := newTestEngine(t)
	defs, err := e.LoadDir(dir)
	if err == nil {
		t.Error("expected the broken script to be reported")
	}
	if len(defs) != 2 || defs[0].Name != "ay" || defs[1].Name != "bee" {
		t.Errorf("defs = %+v", defs)
	}

	write(ManifestName, "scripts:\n  - file: b.lua\n  - file: a.lua\n    enabled: false\n")
	files, err := Files(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b.lua" {
		t.Errorf("Files = %v", files)
	}
}

func TestFilesMissingDir(t *testing.T) {
	files, err := Files(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Errorf("Files = %v, %v", files, err)
	}
}

func TestManifestRejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte("scripts:\n  - file: ../x.lua\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(path); err == nil {
		t.Error("expected error for a file outside the directory")
	}
	if err := os.WriteFile(path, []byte("scripts:\n  - path: x.lua\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadManifest(path); err == nil {
		t.Error("expected error for an unknown field")
	}
}
