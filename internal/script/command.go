package script

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tickcon/internal/command"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/dispatcher/handler"
)

// Definition is a command defined by a script.
type Definition struct {
	Name    string
	Aliases []string
	Usage   string
	Short   string

	// Args is the exact number of arguments, or -1 for any number.
	Args int

	// Source is the script that defined the command.
	Source string

	run *lua.LFunction
}

// Invocation is the parsed form of a script command line.
type Invocation struct {
	Args []string
}

// luaCommand implements the global command{...} function.
func (e *Engine) luaCommand(L *lua.LState) int {
	tbl := L.CheckTable(1)

	def := Definition{Args: -1, Source: e.loading}
	if s, ok := tbl.RawGetString("name").(lua.LString); ok {
		def.Name = strings.TrimSpace(string(s))
	}
	if def.Name == "" || strings.ContainsAny(def.Name, " \t") {
		L.RaiseError("%v: name must be a single word", ErrInvalidCommand)
		return 0
	}
	fn, ok := tbl.RawGetString("run").(*lua.LFunction)
	if !ok {
		L.RaiseError("%v: %s has no run function", ErrInvalidCommand, def.Name)
		return 0
	}
	def.run = fn

	if s, ok := tbl.RawGetString("usage").(lua.LString); ok {
		def.Usage = string(s)
	}
	if s, ok := tbl.RawGetString("short").(lua.LString); ok {
		def.Short = string(s)
	}
	if n, ok := tbl.RawGetString("args").(lua.LNumber); ok {
		def.Args = int(n)
	}
	if aliases, ok := tbl.RawGetString("aliases").(*lua.LTable); ok {
		aliases.ForEach(func(_, v lua.LValue) {
			if s, ok := v.(lua.LString); ok {
				def.Aliases = append(def.Aliases, string(s))
			}
		})
	}

	e.commands = append(e.commands, def)
	return 0
}

// grammar builds the command's matcher.
func (d Definition) grammar() *cobra.Command {
	use := d.Usage
	if f := strings.Fields(use); len(f) == 0 || f[0] != d.Name {
		use = strings.TrimSpace(d.Name + " " + use)
	}
	c := &cobra.Command{
		Use:     use,
		Aliases: d.Aliases,
		Short:   d.Short,
		Args:    cobra.ArbitraryArgs,
	}
	if d.Args >= 0 {
		c.Args = cobra.ExactArgs(d.Args)
	}
	return c
}

func newInvocation(_ *cobra.Command, args []string) (Invocation, error) {
	return Invocation{Args: args}, nil
}

// Install registers every command the engine has loaded on c.
func (e *Engine) Install(c *console.Console) error {
	for _, def := range e.Commands() {
		if err := e.install(c, def); err != nil {
			return fmt.Errorf("%s: %w", def.Source, err)
		}
	}
	return nil
}

func (e *Engine) install(c *console.Console, def Definition) error {
	var grammar command.Grammar = def.grammar
	return console.Register[Invocation](c, grammar, newInvocation, func(ctx *handler.Context, inv Invocation) handler.Result {
		text, err := e.Run(def, ctx.State, inv.Args)
		if err != nil {
			return handler.Error(err)
		}
		return handler.SuccessWithMessage(text)
	})
}
