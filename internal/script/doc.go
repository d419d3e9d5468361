// Package script adds console commands written in Lua.
//
// Each script registers commands by calling the global command function:
//
//	command{
//	    name = "greet",
//	    aliases = {"hi"},
//	    usage = "greet <name>",
//	    short = "Say hello",
//	    args = 1,
//	    run = function(args)
//	        return "hello, " .. args[1]
//	    end,
//	}
//
// run receives the positional arguments as a list. A string result is
// shown on the console, nil shows nothing, and error(...) fails the
// command. Scripts run with only the base, table, string and math
// libraries; the host can add modules with Engine.Module.
//
// Script commands run inside the console's dispatch phase like any other
// handler. Engine.Current returns the host state for the running command
// so host modules can reach it.
package script
