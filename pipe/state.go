package pipe

// State identifies one of the possible states pipe can be in.
type State int32

// Pipe goes through states in declaration order, each at most once.
const (
	// Idle state means that pipe can be started.
	Idle State = iota
	// Initializing state means that components are being opened.
	Initializing
	// Running state means that pipe is executing at the moment.
	Running
	// Draining state means that execution is done and components are released.
	Draining
	// Closed state means that pipe cannot be used anymore.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	}
	return "unknown"
}
