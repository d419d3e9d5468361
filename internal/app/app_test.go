package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dshills/tickcon/internal/config"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/input/keymap"
	"github.com/dshills/tickcon/internal/logging"
	"github.com/dshills/tickcon/internal/renderer"
	"github.com/dshills/tickcon/internal/renderer/backend"
	"github.com/dshills/tickcon/internal/terminal"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Loop.TickRate = 1000
	cfg.Scripts.Enabled = false
	return cfg
}

func newHeadless(t *testing.T, cfg *config.Config) (*Application, *console.Queue, *renderer.Recorder) {
	t.Helper()
	q := console.NewQueue()
	rec := renderer.NewRecorder()
	app, err := New(cfg, Options{Headless: true, Source: q, Sink: rec, Logger: logging.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, q, rec
}

// newSession is like newHeadless but runs behind a terminal guard on a
// null backend, so the toggle key and passthrough are live.
func newSession(t *testing.T, cfg *config.Config) (*Application, *console.Queue, *renderer.Recorder) {
	t.Helper()
	q := console.NewQueue()
	rec := renderer.NewRecorder()
	b := backend.NewNullBackend(60, 10)
	app, err := New(cfg, Options{
		Source: q,
		Sink:   rec,
		Opener: func() (backend.Backend, error) { return b, nil },
		GuardOptions: []terminal.Option{
			terminal.WithProbe(nil),
			terminal.WithSignals(),
		},
		Logger: logging.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, q, rec
}

func run(t *testing.T, app *Application) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := app.Run(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "loop did not quit")
	return err
}

func texts(outs []dispatcher.Outcome) []string {
	s := make([]string, len(outs))
	for i, o := range outs {
		s[i] = o.Message()
	}
	return s
}

func TestRunDispatchesWorldCommands(t *testing.T) {
	app, q, rec := newHeadless(t, testConfig())
	for _, line := range []string{
		"spawn sun",
		"spawn earth --x 1 -p 1",
		"tree",
		"despawn 1",
		"ping",
		"pong",
		"say hello   world",
		"quit",
	} {
		q.Line(line)
	}

	require.ErrorIs(t, run(t, app), ErrQuit)
	require.Equal(t, []string{
		"spawned sun as 1",
		"spawned earth as 2",
		"1 sun (0.0, 0.0)\n└─ 2 earth (1.0, 0.0)",
		"despawned 2 entities: 1, 2",
		"pong (tick 0)",
		"ping",
		"hello world",
		"",
	}, texts(rec.Outcomes()))
	require.Zero(t, app.World().Len())
	require.EqualValues(t, 1, app.World().Ticks())
}

func TestCommandFailures(t *testing.T) {
	app, q, rec := newHeadless(t, testConfig())
	q.Line("despawn x")
	q.Line("despawn 9")
	q.Line("spawn")
	q.Line("spawn moon -p 5")
	q.Line("rate 0")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	outs := rec.Outcomes()
	require.Len(t, outs, 6)

	require.Equal(t, dispatcher.OutcomeParseFailed, outs[0].Kind)
	require.Contains(t, outs[0].Text, `invalid entity id "x"`)
	require.Equal(t, dispatcher.OutcomeHandlerFailed, outs[1].Kind)
	require.Contains(t, outs[1].Text, "no such entity")
	require.Equal(t, dispatcher.OutcomeParseFailed, outs[2].Kind)
	require.Equal(t, dispatcher.OutcomeHandlerFailed, outs[3].Kind)
	require.Equal(t, dispatcher.OutcomeHandlerFailed, outs[4].Kind)
	require.Contains(t, outs[4].Text, "invalid tick rate")
}

func TestRateCommand(t *testing.T) {
	app, q, rec := newHeadless(t, testConfig())
	q.Line("rate 250")
	q.Line("rate")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	require.Equal(t, []string{"tick rate set to 250 Hz", "250 Hz", ""}, texts(rec.Outcomes()))
	require.Equal(t, 250, app.Rate())
}

func TestSetRateBounds(t *testing.T) {
	app, _, _ := newHeadless(t, testConfig())
	require.ErrorIs(t, app.SetRate(0), ErrInvalidRate)
	require.ErrorIs(t, app.SetRate(1001), ErrInvalidRate)
	require.NoError(t, app.SetRate(30))
	require.Equal(t, 30, app.Rate())
}

func TestSysInfo(t *testing.T) {
	app, q, rec := newHeadless(t, testConfig())
	q.Line("sysinfo")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	out := rec.Outcomes()[0]
	require.Equal(t, dispatcher.OutcomeHandled, out.Kind)
	for _, want := range []string{"go", "memory", "loop", "1000 Hz", "world", app.Console().ID()} {
		require.Contains(t, out.Text, want)
	}
}

func TestHelpListsWorldCommands(t *testing.T) {
	app, q, rec := newHeadless(t, testConfig())
	q.Line("help")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	help := rec.Outcomes()[0].Text
	for _, name := range []string{"spawn", "despawn", "tree", "sysinfo", "rate", "quit (exit, q)"} {
		require.Contains(t, help, name)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	app, _, _ := newHeadless(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, app.Run(ctx), context.DeadlineExceeded)
	require.Positive(t, app.World().Ticks())
	require.Positive(t, app.Metrics().Snapshot().TickCount)
}

func TestShutdownFromAnotherGoroutine(t *testing.T) {
	app, _, _ := newHeadless(t, testConfig())
	go func() {
		time.Sleep(20 * time.Millisecond)
		app.Shutdown()
	}()
	require.ErrorIs(t, run(t, app), ErrQuit)
}

func TestPassthroughQuitKey(t *testing.T) {
	cfg := testConfig()
	cfg.Console.StartActive = false
	app, q, rec := newSession(t, cfg)
	q.Type("xq")

	require.ErrorIs(t, run(t, app), ErrQuit)
	require.Empty(t, rec.Outcomes())
}

func TestToggleKeyOpensConsole(t *testing.T) {
	cfg := testConfig()
	cfg.Console.StartActive = false
	app, q, rec := newSession(t, cfg)
	q.Type("`")
	q.Line("say hi")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	require.Equal(t, []string{"hi", ""}, texts(rec.Outcomes()))
	require.EqualValues(t, 2, app.World().Ticks())
}

func TestHeadlessTreatsToggleKeyAsText(t *testing.T) {
	cfg := testConfig()
	cfg.Console.StartActive = false
	app, q, rec := newHeadless(t, cfg)
	q.Line("say 'press ` to open'")
	q.Line("spawn rock")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	require.Equal(t, []string{"press ` to open", "spawned rock as 1", ""}, texts(rec.Outcomes()))
	require.Equal(t, 1, app.World().Len())
}

func TestHeadlessNeedsSource(t *testing.T) {
	_, err := New(testConfig(), Options{Headless: true, Logger: logging.Nop()})
	var ie *InitError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "console", ie.Component)
}

func TestBadToggleKey(t *testing.T) {
	cfg := testConfig()
	cfg.Console.ToggleKey = "Bogus+x"
	_, err := New(cfg, Options{Headless: true, Source: console.NewQueue(), Logger: logging.Nop()})
	require.ErrorIs(t, err, keymap.ErrInvalidKeys)
}

func TestTerminalSession(t *testing.T) {
	b := backend.NewNullBackend(60, 10)
	q := console.NewQueue()
	app, err := New(testConfig(), Options{
		Source: q,
		Opener: func() (backend.Backend, error) { return b, nil },
		GuardOptions: []terminal.Option{
			terminal.WithProbe(nil),
			terminal.WithSignals(),
		},
		Logger: logging.Nop(),
	})
	require.NoError(t, err)
	q.Line("say hi")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	require.NoError(t, app.Close())

	inits, shutdowns, shows := b.Counts()
	require.Equal(t, 1, inits)
	require.Equal(t, 1, shutdowns)
	require.Positive(t, shows)

	var lines []string
	for _, l := range app.prompt.Output(10) {
		lines = append(lines, l.Text)
	}
	require.Equal(t, []string{"> say hi", "hi", "> quit"}, lines)
}

func TestTerminalUnavailableKeepsHostRunning(t *testing.T) {
	app, err := New(testConfig(), Options{
		Opener:       func() (backend.Backend, error) { return nil, errors.New("no tty") },
		GuardOptions: []terminal.Option{terminal.WithProbe(nil), terminal.WithSignals()},
		Logger:       logging.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	go func() {
		time.Sleep(30 * time.Millisecond)
		app.Shutdown()
	}()
	require.ErrorIs(t, run(t, app), ErrQuit)
	require.Positive(t, app.World().Ticks())
	require.False(t, app.Console().Started())
}

const populate = `
command{
  name = "populate",
  usage = "populate <n>",
  short = "Spawn n entities",
  args = 1,
  run = function(args)
    for i = 1, tonumber(args[1]) do
      world.spawn("p" .. i, i, 0)
    end
    return "world has " .. world.count() .. " entities"
  end,
}
`

func TestScriptCommandsSeeTheWorld(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "populate.lua"), []byte(populate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("command{"), 0o644))

	cfg := testConfig()
	cfg.Scripts.Enabled = true
	cfg.Scripts.Dir = dir
	app, q, rec := newHeadless(t, cfg)
	q.Line("populate 3")
	q.Line("populate")
	q.Line("quit")

	require.ErrorIs(t, run(t, app), ErrQuit)
	outs := rec.Outcomes()
	require.Equal(t, "world has 3 entities", outs[0].Text)
	require.Equal(t, dispatcher.OutcomeParseFailed, outs[1].Kind)
	require.Equal(t, 3, app.World().Len())
}

func TestKeymapReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	cfg := testConfig()
	cfg.Keymap.File = path
	app, _, rec := newHeadless(t, cfg)
	require.NoError(t, app.Console().Start())

	kb := keymap.MustParseKeybind("Ctrl+X")
	_, bound := app.Console().Keymap().Lookup(kb)
	require.False(t, bound)

	require.NoError(t, os.WriteFile(path, []byte("[[bind]]\nkeys = \"Ctrl+X\"\naction = \"clear\"\n"), 0o644))
	app.reloadKeymap(path)
	require.Contains(t, strings.Join(rec.Printed(), "\n"), "keymap reloaded")

	app.Tick(time.Millisecond)
	action, bound := app.Console().Keymap().Lookup(kb)
	require.True(t, bound)
	require.Equal(t, keymap.ClearBuffer, action.Kind)

	require.NoError(t, os.WriteFile(path, []byte("[[bind]]\nkeys = \"Ctrl+X\"\naction = \"explode\"\n"), 0o644))
	app.reloadKeymap(path)
	require.Contains(t, strings.Join(rec.Printed(), "\n"), "not reloaded")
	app.Tick(time.Millisecond)
	action, _ = app.Console().Keymap().Lookup(kb)
	require.Equal(t, keymap.ClearBuffer, action.Kind)
}

func TestKeymapWatcherStarted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bind: []\n"), 0o644))

	cfg := testConfig()
	cfg.Keymap.File = path
	cfg.Keymap.Watch = true
	app, _, _ := newHeadless(t, cfg)
	require.NotNil(t, app.watcher)
	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestMissingKeymapFile(t *testing.T) {
	cfg := testConfig()
	cfg.Keymap.File = filepath.Join(t.TempDir(), "none.toml")
	_, err := New(cfg, Options{Headless: true, Source: console.NewQueue(), Logger: logging.Nop()})
	var ie *InitError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "keymap", ie.Component)
}
