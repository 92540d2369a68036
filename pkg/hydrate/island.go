package hydrate

import (
	"sync"
	"sync/atomic"
)

// State is an island's activation state. Transitions are monotonic
// (Pending → Loading → Hydrated or Errored) and owned exclusively by the
// scheduler; an island never regresses from Hydrated.
type State int32

const (
	StatePending State = iota
	StateLoading
	StateHydrated
	StateErrored
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoading:
		return "loading"
	case StateHydrated:
		return "hydrated"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Island is one interactive region of rendered output awaiting client-side
// activation. Instances are created by the registry while the owning
// component is serialized and destroyed with the document session.
type Island struct {
	// ID uniquely identifies the island within and across sessions.
	ID string

	// Selector locates the island's wrapper in the rendered document.
	Selector string

	// Component is the owning component's name.
	Component string

	// Props is the opaque serializable payload handed to activation.
	// The scheduler itself never examines it.
	Props map[string]any

	// Priority orders activation; higher activates first.
	Priority int

	// Deps are dependency names that must resolve before activation.
	Deps []string

	// Eager is set when Priority met the registry's threshold.
	Eager bool

	// seq is the registration order, used as the FIFO tie-break.
	seq uint64

	state atomic.Int32

	errMu sync.Mutex
	err   error
}

// State returns the island's current activation state.
func (i *Island) State() State {
	return State(i.state.Load())
}

// Err returns the retained activation or dependency failure, or nil.
func (i *Island) Err() error {
	i.errMu.Lock()
	defer i.errMu.Unlock()
	return i.err
}

func (i *Island) setState(s State) {
	i.state.Store(int32(s))
}

func (i *Island) setErr(err error) {
	i.errMu.Lock()
	i.err = err
	i.errMu.Unlock()
}
