package console

// State is the console's capture state.
type State uint8

const (
	// Inactive consoles pass keys through to the host.
	Inactive State = iota
	// Capturing consoles edit the prompt line with every key.
	Capturing
	// Dispatching is held while a submitted line's handler runs.
	Dispatching
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Capturing:
		return "capturing"
	case Dispatching:
		return "dispatching"
	default:
		return "unknown"
	}
}

// request is a state change applied at the next tick boundary.
type request uint8

const (
	requestActivate request = iota + 1
	requestDeactivate
	requestToggle
)
