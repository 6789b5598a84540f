// Package sequential provides a backend that buffers submissions and runs
// them one at a time during the heartbeat's sync phase. It is intended for
// debugging and for environments where parallel execution is undesirable.
package sequential

import (
	"context"
	"sync"
	"time"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/backend/shell"
)

// Runner executes a single command payload; *shell.Service is the default.
type Runner interface {
	Run(ctx context.Context, command task.Command, timeout time.Duration) (string, int, error)
	Close() error
}

// Service buffers submissions on ExecuteAsync and executes them serially on
// Sync. Terminal states are reported inline, so by the time one heartbeat
// finishes every submission it dispatched has an event buffered.
type Service struct {
	backend.Base

	reporter       backend.Reporter
	runner         Runner
	commandTimeout time.Duration

	mu       sync.Mutex
	buffered []task.Submission
}

// Option customises the sequential backend.
type Option func(*Service)

// WithRunner sets the command runner; defaults to a local shell session.
func WithRunner(runner Runner) Option {
	return func(s *Service) {
		s.runner = runner
	}
}

// WithCommandTimeout bounds a single command execution.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.commandTimeout = timeout
	}
}

// New creates a sequential backend reporting through the supplied reporter.
func New(reporter backend.Reporter, options ...Option) *Service {
	s := &Service{
		reporter:       reporter,
		commandTimeout: time.Minute,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.runner == nil {
		s.runner = shell.New(nil)
	}
	return s
}

// ExecuteAsync records the submission for the next Sync pass.
func (s *Service) ExecuteAsync(_ context.Context, submission task.Submission) error {
	s.mu.Lock()
	s.buffered = append(s.buffered, submission)
	s.mu.Unlock()
	return nil
}

// Sync drains the buffer, executing each submission and reporting its
// terminal state before moving to the next one.
func (s *Service) Sync(ctx context.Context) error {
	s.mu.Lock()
	pending := s.buffered
	s.buffered = nil
	s.mu.Unlock()

	for _, submission := range pending {
		_, _, runErr := s.runner.Run(ctx, submission.Command, s.commandTimeout)
		var reportErr error
		if runErr != nil {
			reportErr = s.reporter.Fail(submission.Key)
		} else {
			reportErr = s.reporter.Success(submission.Key)
		}
		if reportErr != nil {
			return reportErr
		}
	}
	return nil
}

// End runs whatever is still buffered, then releases the runner.
func (s *Service) End(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		return err
	}
	return s.runner.Close()
}

// Terminate drops buffered submissions and releases the runner.
func (s *Service) Terminate(_ context.Context) error {
	s.mu.Lock()
	s.buffered = nil
	s.mu.Unlock()
	return s.runner.Close()
}

var _ backend.Backend = (*Service)(nil)
