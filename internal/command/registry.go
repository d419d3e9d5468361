package command

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
)

// Grammar builds the matcher for one command.
type Grammar func() *cobra.Command

// Constructor builds a typed command from a matched grammar and its
// positional arguments. Returning an error rejects the line.
type Constructor[T any] func(c *cobra.Command, args []string) (T, error)

// Empty is the Constructor for commands that carry no arguments.
func Empty[T any](*cobra.Command, []string) (T, error) {
	var v T
	return v, nil
}

// Value is a parsed command ready for dispatch.
type Value struct {
	// Name is the command's primary name, even when invoked by alias.
	Name string
	// Invoked is the word the user typed.
	Invoked string
	// Line is the submitted line.
	Line string
	// Args holds the constructor's typed result.
	Args any
}

// Info describes a registered command.
type Info struct {
	Name    string
	Aliases []string
	Short   string
	Use     string
}

type entry struct {
	info      Info
	grammar   Grammar
	construct func(c *cobra.Command, args []string) (any, error)
}

// Registry holds every registered command.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	names   map[string]*entry
	order   []string
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		names:   make(map[string]*entry),
	}
}

// Register adds a command. The command's name and aliases come from the
// grammar's Use and Aliases fields; any of them already taken fails with
// *RegistrationConflictError and leaves the registry unchanged.
func Register[T any](r *Registry, grammar Grammar, construct Constructor[T]) error {
	if grammar == nil || construct == nil {
		return errors.New("command: nil grammar or constructor")
	}
	c := grammar()
	name := c.Name()
	if name == "" {
		return errors.New("command: grammar has no name")
	}

	e := &entry{
		info: Info{
			Name:    name,
			Aliases: slices.Clone(c.Aliases),
			Short:   c.Short,
			Use:     c.Use,
		},
		grammar: grammar,
		construct: func(c *cobra.Command, args []string) (any, error) {
			return construct(c, args)
		},
	}
	return r.add(e)
}

// MustRegister is Register that panics on error, for setup code where a
// conflict is a programming mistake.
func MustRegister[T any](r *Registry, grammar Grammar, construct Constructor[T]) {
	if err := Register(r, grammar, construct); err != nil {
		panic(err)
	}
}

func (r *Registry) add(e *entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrSealed, e.info.Name)
	}

	words := append([]string{e.info.Name}, e.info.Aliases...)
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if existing, ok := r.names[w]; ok {
			return &RegistrationConflictError{Name: w, Existing: existing.info.Name, Incoming: e.info.Name}
		}
		if seen[w] {
			return &RegistrationConflictError{Name: w, Existing: e.info.Name, Incoming: e.info.Name}
		}
		seen[w] = true
	}

	for _, w := range words {
		r.names[w] = e
	}
	r.entries[e.info.Name] = e
	r.order = append(r.order, e.info.Name)
	return nil
}

// Unregister removes a command with its aliases. It reports false when
// name is not a registered primary name or the registry is sealed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok || r.sealed {
		return false
	}
	delete(r.names, e.info.Name)
	for _, a := range e.info.Aliases {
		delete(r.names, a)
	}
	delete(r.entries, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true
}

// Seal forbids further registration. The console seals its registry when
// it starts.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Resolve parses a submitted line.
//
// Blank lines return ErrEmptyLine. A first word naming no command returns
// *UnknownCommandError. Quoting mistakes, unquoted shell operators and
// grammar mismatches return *ParseError carrying the grammar's message.
func (r *Registry) Resolve(line string) (Value, error) {
	if strings.TrimSpace(line) == "" {
		return Value{}, ErrEmptyLine
	}
	words, err := tokenize(line)
	if err != nil {
		return Value{}, err
	}
	if len(words) == 0 {
		return Value{}, ErrEmptyLine
	}

	r.mu.RLock()
	e, ok := r.names[words[0]]
	r.mu.RUnlock()
	if !ok {
		return Value{}, &UnknownCommandError{Name: words[0]}
	}

	args, err := e.match(words[1:])
	if err != nil {
		return Value{}, err
	}
	return Value{Name: e.info.Name, Invoked: words[0], Line: line, Args: args}, nil
}

// shellOperators end a command in a shell. The tokenizer stops at the
// first unquoted one, so a line holding one is rejected rather than cut.
const shellOperators = ";&|<>"

// tokenize splits line into words. Quote an operator to use it literally.
func tokenize(line string) ([]string, error) {
	p := shellwords.NewParser()
	words, err := p.Parse(line)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Err: err}
	}
	if p.Position >= 0 {
		return nil, &ParseError{Message: operatorMessage(line, p.Position), Err: ErrShellOperator}
	}
	return words, nil
}

func operatorMessage(line string, pos int) string {
	runes := []rune(line)
	for i := max(pos, 0); i < len(runes); i++ {
		if strings.ContainsRune(shellOperators, runes[i]) {
			return fmt.Sprintf("unexpected %q at column %d; quote it to use it as text", runes[i], i+1)
		}
	}
	return "unexpected shell operator; quote it to use it as text"
}

// match runs the grammar over the words after the command name.
func (e *entry) match(words []string) (any, error) {
	c := prepare(e.grammar())
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)

	fail := func(err error) error {
		return &ParseError{
			Command: e.info.Name,
			Message: err.Error() + "\n" + c.UsageString(),
			Err:     err,
		}
	}

	if err := c.ParseFlags(words); err != nil {
		return nil, fail(err)
	}
	if help, _ := c.Flags().GetBool("help"); help {
		if err := c.Help(); err != nil {
			return nil, fail(err)
		}
		return nil, &ParseError{Command: e.info.Name, Message: strings.TrimRight(out.String(), "\n"), Help: true}
	}

	args := c.Flags().Args()
	if err := c.ValidateArgs(args); err != nil {
		return nil, fail(err)
	}
	if err := c.ValidateRequiredFlags(); err != nil {
		return nil, fail(err)
	}
	if err := c.ValidateFlagGroups(); err != nil {
		return nil, fail(err)
	}

	v, err := e.construct(c, args)
	if err != nil {
		return nil, &ParseError{Command: e.info.Name, Message: err.Error(), Err: err}
	}
	return v, nil
}

// prepare readies a grammar for matching. Cobra only prints the usage
// line of runnable commands, so grammars without a run function get an
// empty one; it is never called.
func prepare(c *cobra.Command) *cobra.Command {
	if c.Run == nil && c.RunE == nil {
		c.Run = func(*cobra.Command, []string) {}
	}
	c.InitDefaultHelpFlag()
	return c
}

// Lookup returns the command registered under a name or alias.
func (r *Registry) Lookup(word string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.names[word]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// Usage returns the usage text of the named command.
func (r *Registry) Usage(word string) (string, bool) {
	r.mu.RLock()
	e, ok := r.names[word]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	c := prepare(e.grammar())
	return strings.TrimRight(c.UsageString(), "\n"), true
}

// Commands returns every registered command in registration order.
func (r *Registry) Commands() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].info)
	}
	return out
}

// Has reports whether a command is registered under its primary name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
