// Package command turns submitted lines into typed command values.
//
// Each command is registered once, at setup, with a grammar and a typed
// constructor:
//
//	type Spawn struct {
//	    Name string
//	    X, Y int
//	}
//
//	command.Register(reg, func() *cobra.Command {
//	    c := &cobra.Command{Use: "spawn <name>", Args: cobra.ExactArgs(1)}
//	    c.Flags().Int("x", 0, "column")
//	    c.Flags().Int("y", 0, "row")
//	    return c
//	}, func(c *cobra.Command, args []string) (Spawn, error) {
//	    x, _ := c.Flags().GetInt("x")
//	    y, _ := c.Flags().GetInt("y")
//	    return Spawn{Name: args[0], X: x, Y: y}, nil
//	})
//
// A grammar is a cobra command used purely as a matcher: its flags,
// positional-argument validator and usage text. It is never executed.
// The grammar function is called afresh for every line so flag state
// never leaks between submissions.
//
// Lines are split into words with shell quoting rules before the first
// word is looked up among names and aliases.
package command
