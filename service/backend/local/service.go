// Package local provides a worker-pool backend that executes command
// payloads on the host the core runs on.
package local

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/backend/shell"
	"github.com/execq/execq/service/messaging"
	"github.com/execq/execq/service/messaging/memory"
)

// Config represents local backend configuration.
type Config struct {
	// WorkerCount is the number of workers consuming submissions.
	WorkerCount int

	// CommandTimeout bounds a single command execution.
	CommandTimeout time.Duration
}

// DefaultConfig returns the default local backend configuration.
func DefaultConfig() Config {
	return Config{
		WorkerCount:    5,
		CommandTimeout: time.Minute,
	}
}

// Runner executes a single command payload. *shell.Service is the default
// implementation; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, command task.Command, timeout time.Duration) (string, int, error)
	Close() error
}

// Service executes submissions through a pool of workers fed by an in-memory
// queue. Completion is reported back to the core through the configured
// Reporter, from worker goroutines.
type Service struct {
	backend.Base

	config   Config
	reporter backend.Reporter
	queue    messaging.Queue[task.Submission]
	runner   Runner

	workers    []*worker
	workerWg   sync.WaitGroup
	pending    sync.WaitGroup
	terminated atomic.Bool
	started    atomic.Bool
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a local backend.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.reporter == nil {
		return nil, fmt.Errorf("reporter is required")
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[task.Submission](memory.DefaultConfig())
	}
	if s.runner == nil {
		s.runner = shell.New(nil)
	}
	return s, nil
}

// Start spins up the worker pool.
func (s *Service) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// ExecuteAsync hands the submission to the worker pool and returns without
// waiting for execution.
func (s *Service) ExecuteAsync(ctx context.Context, submission task.Submission) error {
	if s.terminated.Load() {
		return fmt.Errorf("backend is terminated")
	}
	s.pending.Add(1)
	if err := s.queue.Publish(ctx, &submission); err != nil {
		s.pending.Done()
		return fmt.Errorf("failed to publish submission %v: %w", submission.Key, err)
	}
	return nil
}

// End blocks until every submission accepted so far has been reported, then
// stops the worker pool.
func (s *Service) End(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.stopWorkers()
	return s.runner.Close()
}

// Terminate stops accepting submissions and cancels the workers; in-flight
// commands are interrupted via context cancellation.
func (s *Service) Terminate(_ context.Context) error {
	s.terminated.Store(true)
	s.stopWorkers()
	return s.runner.Close()
}

func (s *Service) stopWorkers() {
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
	s.workers = nil
}

// run consumes submissions until the worker context is cancelled.
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient queue error; back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("worker %d: failed to process submission: %v", w.id, pErr)
		}
	}
}

// processMessage runs one submission and reports its terminal state.
func (s *Service) processMessage(ctx context.Context, msg messaging.Message[task.Submission]) error {
	submission := msg.T()
	defer s.pending.Done()

	_, _, runErr := s.runner.Run(ctx, submission.Command, s.config.CommandTimeout)

	var reportErr error
	if runErr != nil {
		reportErr = s.reporter.Fail(submission.Key)
	} else {
		reportErr = s.reporter.Success(submission.Key)
	}
	if reportErr != nil {
		// The command already ran; a reporting failure indicates a caller
		// contract violation, so surface it instead of retrying delivery.
		_ = msg.Ack()
		return fmt.Errorf("failed to report %v: %w", submission.Key, reportErr)
	}
	return msg.Ack()
}

var _ backend.Backend = (*Service)(nil)
