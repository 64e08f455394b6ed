package tap

// Unplanned is what Planned returns before a count is known.
const Unplanned = -1

// Phase is where a run is in its lifecycle.
type Phase int

const (
	NotStarted Phase = iota
	Running
	Finished
	Bailed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Bailed:
		return "bailed"
	}
	return "unknown"
}

// State is a snapshot of a run's bookkeeping.
type State struct {
	Planned     int // Unplanned until Plan, SkipAll or DoneTesting sets it
	HasPlan     bool
	NoPlan      bool
	Executed    int
	Failed      int // excludes TODO and skipped assertions
	TodoPending int
	SkipPending int
	Bailed      bool
	Finished    bool
	Phase       Phase
}
