package task

// State describes where a task instance is in its lifecycle. The core only
// writes terminal states into the event buffer; the full set exists because
// the authoritative instance store tracks the non-terminal phases as well.
type State string

const (
	// StateNone is the zero value, an instance that has not been scheduled.
	StateNone State = ""

	// StateQueued marks an instance accepted into the admission queue.
	StateQueued State = "queued"

	// StateRunning marks an instance delegated to a backend.
	StateRunning State = "running"

	// StateSuccess and StateFailed are the terminal outcomes a backend may
	// report back into the core.
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// IsTerminal reports whether the state is a final outcome.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailed
}

func (s State) String() string {
	if s == StateNone {
		return "none"
	}
	return string(s)
}
