package app

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
)

// Say repeats a message.
type Say struct {
	Message string
}

// Ping answers with pong.
type Ping struct{}

// Pong answers with ping.
type Pong struct{}

// Spawn adds an entity to the world.
type Spawn struct {
	Name   string
	X, Y   float64
	VX, VY float64
	Parent int
}

// Despawn removes an entity and its descendants.
type Despawn struct {
	ID int
}

// Tree shows the entity hierarchy.
type Tree struct {
	ID int
}

// SysInfo shows runtime and loop statistics.
type SysInfo struct{}

// Rate shows or sets the tick rate.
type Rate struct {
	Hz  int
	Set bool
}

// registerCommands adds the world commands to c.
func (app *Application) registerCommands(c *console.Console) error {
	if err := console.Register[Say](c, sayGrammar, newSay, runSay); err != nil {
		return err
	}
	if err := console.Register[Ping](c, pingGrammar, command.Empty[Ping], runPing); err != nil {
		return err
	}
	if err := console.Register[Pong](c, pongGrammar, command.Empty[Pong], runPong); err != nil {
		return err
	}
	if err := console.Register[Spawn](c, spawnGrammar, newSpawn, runSpawn); err != nil {
		return err
	}
	if err := console.Register[Despawn](c, despawnGrammar, newDespawn, runDespawn); err != nil {
		return err
	}
	if err := console.Register[Tree](c, treeGrammar, newTree, runTree); err != nil {
		return err
	}
	if err := console.Register[SysInfo](c, sysinfoGrammar, command.Empty[SysInfo], app.runSysInfo); err != nil {
		return err
	}
	if err := console.Register[Rate](c, rateGrammar, newRate, app.runRate); err != nil {
		return err
	}
	return nil
}

// world returns the world a handler was dispatched with.
func world(ctx *handler.Context) (*World, error) {
	w, ok := handler.StateAs[*World](ctx)
	if !ok || w == nil {
		return nil, errors.New("no world to act on")
	}
	return w, nil
}

func sayGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "say <message>",
		Short: "Print a message",
		Args:  cobra.MinimumNArgs(1),
	}
}

func newSay(_ *cobra.Command, args []string) (Say, error) {
	return Say{Message: strings.Join(args, " ")}, nil
}

func runSay(ctx *handler.Context, cmd Say) handler.Result {
	ctx.Logger.Debug("say %q", cmd.Message)
	return handler.SuccessWithMessage(cmd.Message)
}

func pingGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Answer pong",
		Args:  cobra.NoArgs,
	}
}

func runPing(ctx *handler.Context, _ Ping) handler.Result {
	if w, err := world(ctx); err == nil {
		return handler.Successf("pong (tick %d)", w.Ticks())
	}
	return handler.SuccessWithMessage("pong")
}

func pongGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "pong",
		Short: "Answer ping",
		Args:  cobra.NoArgs,
	}
}

func runPong(_ *handler.Context, _ Pong) handler.Result {
	return handler.SuccessWithMessage("ping")
}

func spawnGrammar() *cobra.Command {
	c := &cobra.Command{
		Use:   "spawn <name>",
		Short: "Add an entity to the world",
		Args:  cobra.ExactArgs(1),
	}
	f := c.Flags()
	f.Float64("x", 0, "x position")
	f.Float64("y", 0, "y position")
	f.Float64("vx", 0, "x velocity per second")
	f.Float64("vy", 0, "y velocity per second")
	f.IntP("parent", "p", 0, "id of the parent entity")
	return c
}

func newSpawn(c *cobra.Command, args []string) (Spawn, error) {
	s := Spawn{Name: args[0]}
	f := c.Flags()
	if err := getFloats(f, map[string]*float64{"x": &s.X, "y": &s.Y, "vx": &s.VX, "vy": &s.VY}); err != nil {
		return s, err
	}
	var err error
	if s.Parent, err = f.GetInt("parent"); err != nil {
		return s, err
	}
	if s.Parent < 0 {
		return s, fmt.Errorf("invalid parent id %d", s.Parent)
	}
	return s, nil
}

// getFloats reads each named float flag into its destination.
func getFloats(f *pflag.FlagSet, dst map[string]*float64) error {
	for name, p := range dst {
		v, err := f.GetFloat64(name)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func runSpawn(ctx *handler.Context, cmd Spawn) handler.Result {
	w, err := world(ctx)
	if err != nil {
		return handler.Error(err)
	}
	e, err := w.Spawn(cmd.Name, cmd.X, cmd.Y, cmd.VX, cmd.VY, cmd.Parent)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Successf("spawned %s as %d", e.Name, e.ID)
}

func despawnGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "despawn <id>",
		Short: "Remove an entity and its children",
		Args:  cobra.ExactArgs(1),
	}
}

func newDespawn(_ *cobra.Command, args []string) (Despawn, error) {
	id, err := parseID(args[0])
	return Despawn{ID: id}, err
}

func runDespawn(ctx *handler.Context, cmd Despawn) handler.Result {
	w, err := world(ctx)
	if err != nil {
		return handler.Error(err)
	}
	removed, err := w.Despawn(cmd.ID)
	if err != nil {
		return handler.Error(err)
	}
	if len(removed) == 1 {
		return handler.Successf("despawned %d", cmd.ID)
	}
	ids := make([]string, len(removed))
	for i, id := range removed {
		ids[i] = strconv.Itoa(id)
	}
	return handler.Successf("despawned %d entities: %s", len(removed), strings.Join(ids, ", "))
}

func treeGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [id]",
		Short: "Show the entity hierarchy",
		Args:  cobra.MaximumNArgs(1),
	}
}

func newTree(_ *cobra.Command, args []string) (Tree, error) {
	if len(args) == 0 {
		return Tree{}, nil
	}
	id, err := parseID(args[0])
	return Tree{ID: id}, err
}

func runTree(ctx *handler.Context, cmd Tree) handler.Result {
	w, err := world(ctx)
	if err != nil {
		return handler.Error(err)
	}
	out, err := w.Tree(cmd.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithMessage(out)
}

func sysinfoGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "sysinfo",
		Short: "Show runtime and loop statistics",
		Args:  cobra.NoArgs,
	}
}

func (app *Application) runSysInfo(ctx *handler.Context, _ SysInfo) handler.Result {
	app.metrics.SampleMemory()
	s := app.metrics.Snapshot()

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "go\t%s %s/%s, %d cpus, %d goroutines\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), runtime.NumGoroutine())
	fmt.Fprintf(tw, "memory\t%.1f MB heap, %d gc, last pause %s\n", s.HeapMB(), s.NumGC, s.LastGCPause)
	fmt.Fprintf(tw, "loop\t%d Hz, %d ticks, avg %s (console %s), max %s\n",
		app.Rate(), s.TickCount, s.AvgTick, s.AvgConsole, s.MaxTick)
	fmt.Fprintf(tw, "overruns\t%d (%.1f%%)\n", s.Overruns, s.OverrunRate())
	if w, err := world(ctx); err == nil {
		fmt.Fprintf(tw, "world\t%d entities, %s simulated\n", w.Len(), w.Elapsed().Round(time.Millisecond))
	}
	fmt.Fprintf(tw, "uptime\t%s\n", s.Uptime.Round(time.Second))
	fmt.Fprintf(tw, "console\t%s\n", app.console.ID())
	_ = tw.Flush()
	return handler.SuccessWithMessage(strings.TrimRight(b.String(), "\n"))
}

func rateGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "rate [hz]",
		Short: "Show or set the tick rate",
		Args:  cobra.MaximumNArgs(1),
	}
}

func newRate(_ *cobra.Command, args []string) (Rate, error) {
	if len(args) == 0 {
		return Rate{}, nil
	}
	hz, err := strconv.Atoi(args[0])
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q", args[0])
	}
	return Rate{Hz: hz, Set: true}, nil
}

func (app *Application) runRate(_ *handler.Context, cmd Rate) handler.Result {
	if !cmd.Set {
		return handler.Successf("%d Hz", app.Rate())
	}
	if err := app.SetRate(cmd.Hz); err != nil {
		return handler.Error(err)
	}
	return handler.Successf("tick rate set to %d Hz", cmd.Hz)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entity id %q", s)
	}
	return id, nil
}
