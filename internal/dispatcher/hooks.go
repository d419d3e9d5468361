package dispatcher

import "github.com/dshills/tickcon/internal/command"

// PostDispatchHook is called after every dispatch or report.
type PostDispatchHook interface {
	// PostDispatch may inspect or modify the outcome.
	PostDispatch(val command.Value, out *Outcome)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(val command.Value, out *Outcome)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(val command.Value, out *Outcome) {
	f(val, out)
}

// RegisterPostHook registers a post-dispatch hook. Hooks run in
// registration order.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.hmu.Lock()
	defer d.hmu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

func (d *Dispatcher) runPostHooks(val command.Value, out *Outcome) {
	d.hmu.RLock()
	hooks := make([]PostDispatchHook, len(d.postHooks))
	copy(hooks, d.postHooks)
	d.hmu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(val, out)
	}
}
