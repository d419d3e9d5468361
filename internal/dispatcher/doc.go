// Package dispatcher runs parsed commands against the host's state.
//
// Every command name has at most one handler. Dispatch calls it
// synchronously while holding the dispatcher's lock, so handlers run one
// at a time, in the order lines were submitted, with exclusive access to
// the state they are given. Whatever happens to a line is reported as an
// Outcome; nothing a handler does can crash the caller.
//
// # Outcomes
//
//   - Handled: the handler succeeded, optionally with text to show
//   - UnknownCommand: the first word named no command
//   - ParseFailed: the line did not match the command's grammar
//   - HandlerFailed: the handler returned an error or panicked
//   - Unhandled: the command parsed but nobody registered a handler
//
// The last one is a setup mistake rather than a user error, so it is
// logged at error level.
//
// # Usage
//
//	d := dispatcher.New(dispatcher.DefaultConfig())
//	dispatcher.MustHandle(d, "say", func(ctx *handler.Context, cmd Say) handler.Result {
//	    return handler.SuccessWithMessage(cmd.Msg)
//	})
//
//	val, err := registry.Resolve(line)
//	if err != nil {
//	    out = d.Report(line, err)
//	} else {
//	    out = d.Dispatch(&handler.Context{State: world}, val)
//	}
//
// # Hooks
//
// Post-dispatch hooks observe every outcome, including ones produced by
// Report, and may rewrite it:
//
//	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(val command.Value, out *dispatcher.Outcome) {
//	    log.Info("%s -> %s", val.Name, out.Kind)
//	}))
package dispatcher
