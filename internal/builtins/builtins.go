// Package builtins provides the commands every console has: help, close,
// quit, clear and stats.
package builtins

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/dispatcher"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
)

// Help lists commands, or shows one command's usage.
type Help struct {
	Command string
}

// Close stops the console capturing keys. The host keeps running.
type Close struct{}

// Quit asks the host to shut down.
type Quit struct {
	Verbose bool
}

// Clear erases the console output.
type Clear struct{}

// Stats shows dispatch statistics.
type Stats struct {
	Top   int
	Reset bool
}

// Install registers the built-in commands on c.
func Install(c *console.Console) error {
	if err := console.Register[Help](c, helpGrammar, newHelp, help(c)); err != nil {
		return err
	}
	if err := console.Register[Close](c, closeGrammar, command.Empty[Close], runClose); err != nil {
		return err
	}
	if err := console.Register[Quit](c, quitGrammar, newQuit, runQuit); err != nil {
		return err
	}
	if err := console.Register[Clear](c, clearGrammar, command.Empty[Clear], runClear); err != nil {
		return err
	}
	if err := console.Register[Stats](c, statsGrammar, newStats, stats(c)); err != nil {
		return err
	}
	return nil
}

func helpGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "List commands or show a command's usage",
		Args:  cobra.MaximumNArgs(1),
	}
}

func newHelp(_ *cobra.Command, args []string) (Help, error) {
	var h Help
	if len(args) == 1 {
		h.Command = args[0]
	}
	return h, nil
}

func help(c *console.Console) console.Handler[Help] {
	return func(ctx *handler.Context, cmd Help) handler.Result {
		reg := c.Registry()
		if cmd.Command != "" {
			usage, ok := reg.Usage(cmd.Command)
			if !ok {
				return noSuchCommand(reg, cmd.Command)
			}
			return handler.SuccessWithMessage(usage)
		}

		var b strings.Builder
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for _, info := range reg.Commands() {
			name := info.Name
			if len(info.Aliases) > 0 {
				name += " (" + strings.Join(info.Aliases, ", ") + ")"
			}
			fmt.Fprintf(w, "  %s\t%s\n", name, info.Short)
		}
		_ = w.Flush()
		return handler.SuccessWithMessage("Commands:\n" + strings.TrimRight(b.String(), "\n"))
	}
}

// noSuchCommand fails with the commands name could have meant.
func noSuchCommand(reg *command.Registry, name string) handler.Result {
	matches := reg.Suggest(name, 3)
	if len(matches) == 0 {
		return handler.Errorf("no command named %q", name)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return handler.Errorf("no command named %q; did you mean %s?", name, strings.Join(names, ", "))
}

func closeGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Stop capturing keys; the toggle key reopens the console",
		Args:  cobra.NoArgs,
	}
}

func runClose(ctx *handler.Context, _ Close) handler.Result {
	if ctx.Console == nil {
		return handler.NoOp()
	}
	ctx.Console.Close()
	return handler.Success()
}

func quitGrammar() *cobra.Command {
	c := &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit", "q"},
		Short:   "Shut down the application",
		Args:    cobra.NoArgs,
	}
	c.Flags().BoolP("verbose", "v", false, "say goodbye")
	return c
}

func newQuit(c *cobra.Command, _ []string) (Quit, error) {
	v, err := c.Flags().GetBool("verbose")
	return Quit{Verbose: v}, err
}

func runQuit(ctx *handler.Context, cmd Quit) handler.Result {
	if ctx.Console == nil {
		return handler.Errorf("no console to quit")
	}
	ctx.Console.RequestQuit()
	if cmd.Verbose {
		return handler.SuccessWithMessage("shutting down")
	}
	return handler.Success()
}

func clearGrammar() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the output",
		Args:  cobra.NoArgs,
	}
}

func runClear(ctx *handler.Context, _ Clear) handler.Result {
	if ctx.Console == nil {
		return handler.NoOp()
	}
	ctx.Console.ClearOutput()
	return handler.Success()
}

func statsGrammar() *cobra.Command {
	c := &cobra.Command{
		Use:   "stats",
		Short: "Show command statistics",
		Args:  cobra.NoArgs,
	}
	c.Flags().IntP("top", "n", 5, "number of commands to list")
	c.Flags().Bool("reset", false, "reset the counters")
	return c
}

func newStats(c *cobra.Command, _ []string) (Stats, error) {
	top, err := c.Flags().GetInt("top")
	if err != nil {
		return Stats{}, err
	}
	if top < 0 {
		return Stats{}, fmt.Errorf("--top must not be negative, got %d", top)
	}
	reset, err := c.Flags().GetBool("reset")
	return Stats{Top: top, Reset: reset}, err
}

func stats(c *console.Console) console.Handler[Stats] {
	return func(ctx *handler.Context, cmd Stats) handler.Result {
		m := c.Dispatcher().Metrics()
		if m == nil {
			return handler.Errorf("metrics are disabled")
		}
		if cmd.Reset {
			m.Reset()
			return handler.SuccessWithMessage("counters reset")
		}

		s := m.Snapshot()
		var b strings.Builder
		fmt.Fprintf(&b, "%d dispatched, %d failed, %d panicked, avg %s\n",
			s.TotalDispatches, s.TotalFailures, s.TotalPanics, s.AverageDuration)
		fmt.Fprintf(&b, "%d unknown, %d unparsed, %d unhandled",
			s.ByKind[dispatcher.OutcomeUnknownCommand],
			s.ByKind[dispatcher.OutcomeParseFailed],
			s.ByKind[dispatcher.OutcomeUnhandled])

		if top := m.TopCommands(cmd.Top); len(top) > 0 {
			b.WriteString("\n")
			w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
			for _, cm := range top {
				fmt.Fprintf(w, "  %s\t%d\t%d failed\t%s\n", cm.Name, cm.DispatchCount, cm.FailureCount, cm.AverageDuration())
			}
			_ = w.Flush()
		}
		return handler.SuccessWithMessage(strings.TrimRight(b.String(), "\n"))
	}
}

