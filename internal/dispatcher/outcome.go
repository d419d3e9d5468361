package dispatcher

import "fmt"

// OutcomeKind classifies what happened to a submitted line.
type OutcomeKind uint8

const (
	// OutcomeHandled means the handler ran and succeeded.
	OutcomeHandled OutcomeKind = iota
	// OutcomeUnknownCommand means no command has the typed name.
	OutcomeUnknownCommand
	// OutcomeParseFailed means the arguments did not match the grammar.
	OutcomeParseFailed
	// OutcomeHandlerFailed means the handler failed or panicked.
	OutcomeHandlerFailed
	// OutcomeUnhandled means the command has no handler.
	OutcomeUnhandled
)

// String returns a string representation of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHandled:
		return "handled"
	case OutcomeUnknownCommand:
		return "unknown-command"
	case OutcomeParseFailed:
		return "parse-failed"
	case OutcomeHandlerFailed:
		return "handler-failed"
	case OutcomeUnhandled:
		return "unhandled"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", k)
	}
}

// Outcome reports what happened to one submitted line.
type Outcome struct {
	Kind OutcomeKind

	// Command is the command's primary name, or the unknown word.
	Command string

	// Text is the message for the user. For Handled it is the handler's
	// optional output, present only when HasText is set.
	Text    string
	HasText bool

	// Help marks a ParseFailed outcome that is really a usage request.
	Help bool

	// Err is the underlying error for failures.
	Err error
}

// Handled reports a successful handler call with optional text.
func Handled(cmd, text string) Outcome {
	return Outcome{Kind: OutcomeHandled, Command: cmd, Text: text, HasText: text != ""}
}

// IsFailure reports whether the outcome should be shown as an error.
func (o Outcome) IsFailure() bool {
	return o.Kind != OutcomeHandled && !o.Help
}

// Message returns the text to show the user, or "" when there is none.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeHandled:
		return o.Text
	case OutcomeUnknownCommand:
		return fmt.Sprintf("unknown command: %s (try 'help')", o.Command)
	case OutcomeUnhandled:
		return fmt.Sprintf("%s: registered but unhandled", o.Command)
	default:
		return o.Text
	}
}

func (o Outcome) String() string {
	if o.Command == "" {
		return o.Kind.String()
	}
	return o.Kind.String() + "(" + o.Command + ")"
}
