// Package main is the entry point for tickcon, a demo host that embeds
// the in-loop command console.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/tickcon/internal/app"
	"github.com/dshills/tickcon/internal/config"
	"github.com/dshills/tickcon/internal/console"
	"github.com/dshills/tickcon/internal/renderer"
	"github.com/dshills/tickcon/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command line.
type options struct {
	configPath string
	logLevel   string
	logFile    string
	keymap     string
	scriptsDir string
	noScripts  bool
	rate       int
	inactive   bool
	commands   commandList
}

// commandList collects repeated -c flags.
type commandList []string

func (c *commandList) String() string { return strings.Join(*c, "; ") }

func (c *commandList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Without a terminal, or with -c, lines come from the arguments and
	// standard input and results go to standard output.
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && len(opts.commands) == 0
	var appOpts app.Options
	if !interactive {
		appOpts = headless(opts.commands)
	}

	application, err := app.New(cfg, appOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()
	if g := application.Guard(); g != nil {
		defer g.Recover()
	}

	application.Logger().Info("tickcon %s (%s) starting on %s", version, commit, terminal.Describe(os.Stdin))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = application.Run(ctx)
	switch {
	case err == nil, errors.Is(err, app.ErrQuit), errors.Is(err, context.Canceled):
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

// headless feeds the console from -c commands, then standard input when
// it is not a terminal, and quits when both are exhausted.
func headless(commands []string) app.Options {
	q := console.NewQueue()
	feed := func(line string) {
		if n := q.Line(line); n > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d control characters removed from %q\n", n, line)
		}
	}
	for _, c := range commands {
		feed(c)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		q.Line("quit")
	} else {
		go func() {
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				feed(sc.Text())
			}
			q.Line("quit")
		}()
	}

	return app.Options{
		Headless: true,
		Source:   q,
		Sink:     renderer.NewWriter(os.Stdout, os.Stderr, ""),
	}
}

// loadConfig reads the configuration file and environment, then applies
// the command line over them.
func loadConfig(opts options) (*config.Config, error) {
	path, required := opts.configPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}
	if opts.keymap != "" {
		cfg.Keymap.File = opts.keymap
	}
	if opts.scriptsDir != "" {
		cfg.Scripts.Dir = opts.scriptsDir
	}
	if opts.noScripts {
		cfg.Scripts.Enabled = false
	}
	if opts.rate != 0 {
		cfg.Loop.TickRate = opts.rate
	}
	if opts.inactive {
		cfg.Console.StartActive = false
	}
	return cfg, cfg.Validate()
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&opts.keymap, "keymap", "", "Keymap file (.toml, .yaml)")
	flag.StringVar(&opts.scriptsDir, "scripts", "", "Directory of Lua command scripts")
	flag.BoolVar(&opts.noScripts, "no-scripts", false, "Do not load Lua scripts")
	flag.IntVar(&opts.rate, "rate", 0, "Ticks per second")
	flag.BoolVar(&opts.inactive, "inactive", false, "Start with the console closed")
	flag.Var(&opts.commands, "c", "Run a command without the terminal (repeatable)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tickcon - a command console inside a fixed-rate loop\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tickcon [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s\n", strings.Join(config.EnvNames(), ", "))
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tickcon                          Run with the console open\n")
		fmt.Fprintf(os.Stderr, "  tickcon -c 'spawn a' -c tree     Run commands and exit\n")
		fmt.Fprintf(os.Stderr, "  echo sysinfo | tickcon           Read commands from stdin\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("tickcon %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %q\n", flag.Args())
		os.Exit(2)
	}

	return opts
}
