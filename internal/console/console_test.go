package console

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
	"github.com/dshills/tickcon/internal/input/key"
	"github.com/dshills/tickcon/internal/input/keymap"
	"github.com/dshills/tickcon/internal/renderer"
	"github.com/dshills/tickcon/internal/renderer/backend"
	"github.com/dshills/tickcon/internal/terminal"
)

type world struct {
	log []string
}

type say struct {
	Msg string
}

func sayGrammar() *cobra.Command {
	return &cobra.Command{Use: "say <msg>", Short: "Echo a message", Args: cobra.ExactArgs(1)}
}

func newSay(_ *cobra.Command, args []string) (say, error) {
	return say{Msg: args[0]}, nil
}

func noArgs(use string) command.Grammar {
	return func() *cobra.Command {
		return &cobra.Command{Use: use, Args: cobra.NoArgs}
	}
}

var empty = command.Empty[struct{}]

// logTo returns a handler recording its command name in the world.
func logTo(name string) Handler[struct{}] {
	return func(ctx *handler.Context, _ struct{}) handler.Result {
		w, ok := handler.StateAs[*world](ctx)
		if !ok {
			return handler.Errorf("no world")
		}
		w.log = append(w.log, name)
		return handler.Success()
	}
}

func newTestConsole(t *testing.T, opts ...Option) (*Console, *Queue, *renderer.Recorder) {
	t.Helper()
	q := NewQueue()
	rec := renderer.NewRecorder()
	opts = append([]Option{WithSource(q), WithSink(rec)}, opts...)
	c := New(command.NewRegistry(), dispatcher.NewWithDefaults(), opts...)

	MustRegister(c, sayGrammar, newSay, func(ctx *handler.Context, cmd say) handler.Result {
		return handler.SuccessWithMessage(cmd.Msg)
	})
	MustRegister(c, noArgs("ping"), empty, logTo("ping"))
	MustRegister(c, noArgs("pong"), empty, logTo("pong"))
	return c, q, rec
}

func start(t *testing.T, c *Console) {
	t.Helper()
	require.NoError(t, c.Start())
	t.Cleanup(func() { _ = c.Stop() })
}

func TestUnknownCommandClearsBuffer(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	q.Line("hello")
	c.Tick(&world{})

	out := rec.Outcomes()
	require.Len(t, out, 1)
	require.Equal(t, dispatcher.OutcomeUnknownCommand, out[0].Kind)
	require.Equal(t, "hello", out[0].Command)
	require.Equal(t, renderer.Frame{}, rec.Last())

	text, cursor := c.pump.Line()
	require.Empty(t, text)
	require.Zero(t, cursor)
}

func TestSayEchoes(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	q.Type("say hi")
	q.Press(key.KeyEnter)
	c.Tick(&world{})

	out := rec.Outcomes()
	require.Len(t, out, 1)
	require.Equal(t, dispatcher.OutcomeHandled, out[0].Kind)
	require.True(t, out[0].HasText)
	require.Equal(t, "hi", out[0].Text)
	require.Equal(t, []string{"say hi"}, rec.Echoed())
}

func TestBackspaceOnEmptyBuffer(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	q.Press(key.KeyBackspace)
	require.NotPanics(t, func() { c.Tick(&world{}) })

	require.Equal(t, renderer.Frame{}, rec.Last())
	require.Empty(t, rec.Outcomes())
}

func TestSubmissionsDispatchInOrderWithinTick(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	w := &world{}
	q.Line("ping")
	q.Line("pong")
	c.Tick(w)

	require.Equal(t, []string{"ping", "pong"}, w.log)
	require.Len(t, rec.Outcomes(), 2)
}

func TestSubmissionIsNotDeferred(t *testing.T) {
	c, q, _ := newTestConsole(t)
	start(t, c)

	w := &world{}
	q.Line("ping")
	c.Tick(w)
	require.Equal(t, []string{"ping"}, w.log, "line submitted in a tick must run in that tick")

	q.Type("po")
	c.Tick(w)
	q.Type("ng")
	q.Press(key.KeyEnter)
	c.Tick(w)
	require.Equal(t, []string{"ping", "pong"}, w.log)
}

func TestEmptyLineIsSilent(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	q.Line("   ")
	q.Press(key.KeyEnter)
	c.Tick(&world{})

	require.Empty(t, rec.Outcomes())
	require.Empty(t, rec.Echoed())
}

func TestParseFailureKeepsGrammarText(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	q.Line("say")
	c.Tick(&world{})

	out := rec.Outcomes()
	require.Len(t, out, 1)
	require.Equal(t, dispatcher.OutcomeParseFailed, out[0].Kind)
	require.Contains(t, out[0].Message(), "accepts 1 arg(s), received 0")
	require.Contains(t, out[0].Message(), "say <msg>")
}

func TestEditingKeysAndCursorColumn(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	q.Type("sy")
	q.Press(key.KeyLeft)
	q.Type("a")
	c.Tick(&world{})
	require.Equal(t, renderer.Frame{Buffer: "say", Column: 2}, rec.Last())

	q.Press(key.KeyEnd)
	q.Type(" 日本")
	c.Tick(&world{})
	require.Equal(t, renderer.Frame{Buffer: "say 日本", Column: 8}, rec.Last())

	q.Press(key.KeyEscape)
	c.Tick(&world{})
	require.Equal(t, renderer.Frame{}, rec.Last())
}

func TestHandlerPanicIsContained(t *testing.T) {
	c, q, rec := newTestConsole(t)
	MustRegister(c, noArgs("boom"), empty, func(*handler.Context, struct{}) handler.Result {
		panic("kaboom")
	})
	start(t, c)

	w := &world{}
	q.Line("boom")
	q.Line("ping")
	require.NotPanics(t, func() { c.Tick(w) })

	out := rec.Outcomes()
	require.Len(t, out, 2)
	require.Equal(t, dispatcher.OutcomeHandlerFailed, out[0].Kind)
	require.Equal(t, dispatcher.OutcomeHandled, out[1].Kind)
	require.Equal(t, []string{"ping"}, w.log)
}

func TestDispatchingStateDuringHandler(t *testing.T) {
	c, q, _ := newTestConsole(t)
	var seen State
	MustRegister(c, noArgs("peek"), empty, func(*handler.Context, struct{}) handler.Result {
		seen = c.State()
		return handler.Success()
	})
	start(t, c)

	q.Line("peek")
	c.Tick(nil)

	require.Equal(t, Dispatching, seen)
	require.Equal(t, Capturing, c.State())
}

func TestRegisterConflict(t *testing.T) {
	c, _, _ := newTestConsole(t)

	err := Register(c, noArgs("ping"), empty, logTo("ping"))
	var conflict *command.RegistrationConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestRegisterLeavesNothingBehindOnHandlerError(t *testing.T) {
	c, _, _ := newTestConsole(t)
	dispatcher.MustHandle[struct{}](c.Dispatcher(), "taken", logTo("taken"))

	err := Register(c, noArgs("taken"), empty, logTo("taken"))
	require.ErrorIs(t, err, dispatcher.ErrDuplicateHandler)
	require.False(t, c.Registry().Has("taken"))

	err = Register(c, noArgs("orphan"), empty, nil)
	require.Error(t, err)
	require.False(t, c.Registry().Has("orphan"))

	// The name is free again once the handler side is sorted out.
	require.NoError(t, Register(c, noArgs("orphan"), empty, logTo("orphan")))
}

func TestRegisterAfterStartFails(t *testing.T) {
	c, _, _ := newTestConsole(t)
	start(t, c)

	err := Register(c, noArgs("late"), empty, logTo("late"))
	require.ErrorIs(t, err, command.ErrSealed)
}

func TestTerminalUnavailable(t *testing.T) {
	devnull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer devnull.Close()

	b := backend.NewNullBackend(80, 24)
	guard := terminal.NewGuard(
		func() (backend.Backend, error) { return b, nil },
		terminal.WithProbe(terminal.ProbeFile(devnull)),
		terminal.WithSignals(),
	)
	c := New(command.NewRegistry(), dispatcher.NewWithDefaults(), WithSession(guard))

	err = c.Start()
	require.ErrorIs(t, err, terminal.ErrTerminalUnavailable)
	require.Equal(t, Inactive, c.State())
	require.False(t, c.Started())
	require.False(t, guard.Active())

	// The host keeps ticking.
	require.NotPanics(t, func() { c.Tick(&world{}) })
	inits, _, _ := b.Counts()
	require.Zero(t, inits)
}

func TestToggleKeyPassesThroughWhileInactive(t *testing.T) {
	var passed []key.Event
	toggle := keymap.MustParseKeybind("`")
	c, q, rec := newTestConsole(t,
		WithToggleKey(toggle),
		WithStartInactive(),
		WithPassthrough(func(ev key.Event) { passed = append(passed, ev) }),
	)
	start(t, c)
	require.Equal(t, Inactive, c.State())

	q.Type("w")
	c.Tick(&world{})
	require.Len(t, passed, 1)
	require.Equal(t, 'w', passed[0].Rune)
	require.Empty(t, rec.Last().Buffer)

	// Keys after the toggle wait for the next tick, then go to the prompt.
	q.Type("`ab")
	c.Tick(&world{})
	require.Equal(t, Inactive, c.State())
	require.Len(t, passed, 1)
	require.True(t, c.pump.Pending())

	c.Tick(&world{})
	require.Equal(t, Capturing, c.State())
	require.Equal(t, "ab", rec.Last().Buffer)
	require.Len(t, passed, 1, "captured keys must not reach the host")

	// The toggle itself is never inserted.
	q.Type("`")
	c.Tick(&world{})
	c.Tick(&world{})
	require.Equal(t, Inactive, c.State())
	require.Equal(t, "ab", rec.Last().Buffer)
}

func TestRequestsApplyAtTickBoundary(t *testing.T) {
	c, q, rec := newTestConsole(t)
	MustRegister(c, noArgs("close"), empty, func(ctx *handler.Context, _ struct{}) handler.Result {
		ctx.Console.Close()
		return handler.Success()
	})
	start(t, c)

	// Keys typed after close in the same tick are still captured.
	q.Line("close")
	q.Type("x")
	c.Tick(&world{})
	require.Equal(t, Capturing, c.State())
	require.Equal(t, "x", rec.Last().Buffer)

	c.Tick(&world{})
	require.Equal(t, Inactive, c.State())

	c.Activate()
	require.Equal(t, Inactive, c.State())
	c.Tick(&world{})
	require.Equal(t, Capturing, c.State())
}

func TestRequestsBeforeStartAreKept(t *testing.T) {
	c, _, _ := newTestConsole(t, WithStartInactive())
	c.Activate()
	c.Tick(&world{})
	require.Equal(t, Inactive, c.State())

	start(t, c)
	require.Equal(t, Inactive, c.State())
	c.Tick(&world{})
	require.Equal(t, Capturing, c.State())
}

func TestShellOperatorsAreNotDispatched(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	w := &world{}
	q.Line("ping; pong")
	q.Line("say a|b")
	q.Line("say 'a;b'")
	c.Tick(w)

	out := rec.Outcomes()
	require.Len(t, out, 3)
	require.Equal(t, dispatcher.OutcomeParseFailed, out[0].Kind)
	require.Equal(t, dispatcher.OutcomeParseFailed, out[1].Kind)
	require.Equal(t, dispatcher.OutcomeHandled, out[2].Kind)
	require.Equal(t, "a;b", out[2].Message())
	require.Empty(t, w.log)
}

func TestQuitRequest(t *testing.T) {
	quits := 0
	c, q, _ := newTestConsole(t, WithQuitHandler(func() { quits++ }))
	MustRegister(c, noArgs("quit"), empty, func(ctx *handler.Context, _ struct{}) handler.Result {
		ctx.Console.RequestQuit()
		return handler.Success()
	})
	start(t, c)

	q.Line("quit")
	q.Line("quit")
	c.Tick(&world{})

	require.True(t, c.QuitRequested())
	require.Equal(t, 1, quits)
}

func TestHandlerOutputGoesToSink(t *testing.T) {
	c, q, rec := newTestConsole(t)
	MustRegister(c, noArgs("chatty"), empty, func(ctx *handler.Context, _ struct{}) handler.Result {
		ctx.Print("line one")
		ctx.Console.ClearOutput()
		ctx.Print("line two")
		return handler.Success()
	})
	start(t, c)

	q.Line("chatty")
	c.Tick(&world{})

	require.Equal(t, []string{"line two"}, rec.Printed())
	require.Equal(t, 1, rec.Clears())
}

func TestSetKeymapAtTickBoundary(t *testing.T) {
	c, q, rec := newTestConsole(t)
	start(t, c)

	km := keymap.Default()
	km.Bind(keymap.MustParseKeybind("Ctrl+U"), keymap.Do(keymap.ClearBuffer))
	c.SetKeymap(km)

	q.Type("abc")
	q.Push(key.NewRuneEvent('u', key.ModCtrl))
	c.Tick(&world{})

	require.Same(t, km, c.Keymap())
	require.Equal(t, renderer.Frame{}, rec.Last())
}

func TestStopIsIdempotent(t *testing.T) {
	c, _, _ := newTestConsole(t)
	require.NoError(t, c.Start())
	require.NoError(t, c.Start())
	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	require.Equal(t, Inactive, c.State())
}

func TestStartWithoutSource(t *testing.T) {
	c := New(command.NewRegistry(), dispatcher.NewWithDefaults())
	require.Error(t, c.Start())
	require.False(t, c.Started())
}

func TestSessionDrivesPrompt(t *testing.T) {
	b := backend.NewNullBackend(40, 5)
	guard := terminal.NewGuard(
		func() (backend.Backend, error) { return b, nil },
		terminal.WithProbe(nil),
		terminal.WithSignals(),
	)
	prompt := renderer.NewPrompt(renderer.DefaultPromptOptions())
	c := New(command.NewRegistry(), dispatcher.NewWithDefaults(), WithSession(guard), WithSink(prompt))
	MustRegister(c, sayGrammar, newSay, func(ctx *handler.Context, cmd say) handler.Result {
		return handler.SuccessWithMessage(cmd.Msg)
	})
	require.NoError(t, c.Start())
	require.True(t, guard.Active())

	for _, r := range "say hi" {
		b.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent(r, key.ModNone)})
	}
	b.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewSpecialEvent(key.KeyEnter, key.ModNone)})

	require.Eventually(t, func() bool {
		c.Tick(nil)
		return strings.TrimSpace(b.Row(3)) == "hi"
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "> say hi", strings.TrimSpace(b.Row(2)))

	// Ctrl+C never reaches the prompt; it asks the host to quit.
	b.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent('c', key.ModCtrl)})
	require.Eventually(t, c.QuitRequested, time.Second, 5*time.Millisecond)
	require.EqualValues(t, 1, c.Interrupts())

	require.NoError(t, c.Stop())
	require.False(t, guard.Active())
	_, shutdowns, _ := b.Counts()
	require.Equal(t, 1, shutdowns)
}
