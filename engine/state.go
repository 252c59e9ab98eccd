package engine

// State is the position of a GlobalTracker in the event pipeline.
type State int

const (
	StateIdle State = iota
	StateEventLoaded
	StateSlicesReconstructed
	StateMerged
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEventLoaded:
		return "event-loaded"
	case StateSlicesReconstructed:
		return "slices-reconstructed"
	case StateMerged:
		return "merged"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}
