package control

// State is the control phase of one agent.
type State int

const (
	Seeking State = iota
	Navigating
	// Recovering is entered when the path is blocked. Block detection is a
	// hook (WithBlockDetector); the default detector never fires.
	Recovering
)

func (s State) String() string {
	switch s {
	case Seeking:
		return "Seeking"
	case Navigating:
		return "Navigating"
	case Recovering:
		return "Recovering"
	}
	return "Unknown"
}

type Event int

const (
	GetTarget Event = iota
	Blocked
	Unblocked
	Done
	Abandon
)

func (e Event) String() string {
	switch e {
	case GetTarget:
		return "GetTarget"
	case Blocked:
		return "Blocked"
	case Unblocked:
		return "Unblocked"
	case Done:
		return "Done"
	case Abandon:
		return "Abandon"
	}
	return "Unknown"
}

type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]State{
	{Seeking, GetTarget}:    Navigating,
	{Seeking, Abandon}:      Seeking,
	{Navigating, Done}:      Seeking,
	{Navigating, Abandon}:   Seeking,
	{Navigating, Blocked}:   Recovering,
	{Recovering, Unblocked}: Navigating,
	{Recovering, Abandon}:   Seeking,
}

// Next returns the state reached from s on e. ok is false for events the
// state does not handle; the state is then unchanged.
func Next(s State, e Event) (State, bool) {
	to, ok := transitions[transitionKey{s, e}]
	if !ok {
		return s, false
	}
	return to, true
}
