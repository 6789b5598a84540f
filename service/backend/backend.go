package backend

import (
	"context"
	"fmt"

	"github.com/execq/execq/model/task"
)

// Backend is the capability set a concrete execution backend must provide.
// Start and Sync are optional; ExecuteAsync, End and Terminate are required.
// Embedding Base satisfies the interface with the optional operations as
// no-ops and the required ones returning ErrNotImplemented, so a partial
// implementation fails loudly the first time a missing capability is called.
type Backend interface {
	// Start performs one-time backend initialization, e.g. spinning up
	// worker goroutines or processes.
	Start(ctx context.Context) error

	// ExecuteAsync submits work to the backend. It must return without
	// waiting for the work to run; completion is reported through the
	// Reporter the backend was built with.
	ExecuteAsync(ctx context.Context, submission task.Submission) error

	// Sync is invoked once per heartbeat after dispatch, for backends that
	// must actively reconcile external status.
	Sync(ctx context.Context) error

	// End blocks until all previously submitted work has reached a terminal
	// state. Used at orderly shutdown.
	End(ctx context.Context) error

	// Terminate is invoked on an abrupt shutdown signal. The backend must
	// stop accepting dispatch and make a best effort to halt outstanding
	// work.
	Terminate(ctx context.Context) error
}

// Reporter is the single synchronization point back into the core. Backends
// call it, possibly from their own goroutines, when delegated work reaches a
// terminal state.
type Reporter interface {
	// Success reports the task as completed successfully.
	Success(key task.Key) error

	// Fail reports the task as failed.
	Fail(key task.Key) error
}

// Base provides defaults for the Backend interface: optional operations are
// no-ops, required operations surface ErrNotImplemented.
type Base struct{}

func (Base) Start(_ context.Context) error { return nil }

func (Base) Sync(_ context.Context) error { return nil }

func (Base) ExecuteAsync(_ context.Context, _ task.Submission) error {
	return fmt.Errorf("executeAsync: %w", ErrNotImplemented)
}

func (Base) End(_ context.Context) error {
	return fmt.Errorf("end: %w", ErrNotImplemented)
}

func (Base) Terminate(_ context.Context) error {
	return fmt.Errorf("terminate: %w", ErrNotImplemented)
}

var _ Backend = Base{}
