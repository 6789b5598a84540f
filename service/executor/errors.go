package executor

import "errors"

var (
	// ErrNotRunning is returned when a state change is reported for a key
	// that is not in the running set. It marks a caller contract violation:
	// the backend reported work the core never dispatched, or reported it
	// twice.
	ErrNotRunning = errors.New("executor: task not in running set")

	// ErrBackendRequired is returned by New when no backend was supplied.
	ErrBackendRequired = errors.New("executor: backend is required")
)
