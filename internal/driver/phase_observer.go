package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// PhaseProgress reports that one more item of the phase is done.
	PhaseProgress
)

// PhaseEvent describes a timing phase boundary or progress step.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Done    int
	Total   int
}

// PhaseObserver receives phase events emitted during Check. It may be called
// from worker goroutines.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) emit(ev PhaseEvent) {
	if o != nil {
		o(ev)
	}
}
