package execq

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/executor"
)

// Runtime owns the heartbeat loop: it starts the backend, drives the core on
// a fixed interval and shuts both down in order. All admission and drain
// operations pass through to the core.
type Runtime struct {
	id       string
	core     *executor.Service
	backend  backend.Backend
	interval time.Duration
	logger   *log.Logger

	started  atomic.Bool
	cancelFn context.CancelFunc
	loopDone chan struct{}
}

func newRuntime(core *executor.Service, b backend.Backend, interval time.Duration, logger *log.Logger) *Runtime {
	return &Runtime{
		id:       uuid.New().String(),
		core:     core,
		backend:  b,
		interval: interval,
		logger:   logger,
	}
}

// ID returns the unique runtime identifier.
func (r *Runtime) ID() string {
	return r.id
}

// Executor returns the admission core.
func (r *Runtime) Executor() *executor.Service {
	return r.core
}

// Start initialises the backend and launches the heartbeat loop. A second
// call is a no-op.
func (r *Runtime) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := r.backend.Start(ctx); err != nil {
		r.started.Store(false)
		return err
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel
	r.loopDone = make(chan struct{})
	go r.heartbeatLoop(loopCtx)
	return nil
}

func (r *Runtime) heartbeatLoop(ctx context.Context) {
	defer close(r.loopDone)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.core.Heartbeat(ctx); err != nil {
				if errors.Is(err, backend.ErrNotImplemented) {
					// A backend without the required capabilities can never
					// make progress; stop the loop instead of failing every
					// tick.
					r.logf("heartbeat aborted: %v", err)
					return
				}
				r.logf("heartbeat failed: %v", err)
			}
		}
	}
}

// Heartbeat runs a single dispatch pass outside the loop schedule.
func (r *Runtime) Heartbeat(ctx context.Context) error {
	return r.core.Heartbeat(ctx)
}

// Submit places work into the admission queue.
func (r *Runtime) Submit(ctx context.Context, key task.Key, command task.Command, priority int, queueName string) {
	r.core.Submit(ctx, key, command, priority, queueName)
}

// QueueInstance submits work described by an externally-owned task instance.
func (r *Runtime) QueueInstance(ctx context.Context, instance *task.Instance) {
	r.core.QueueInstance(ctx, instance)
}

// Has reports whether the key is queued or running.
func (r *Runtime) Has(key task.Key) bool {
	return r.core.Has(key)
}

// DrainEvents returns buffered terminal states, optionally for the supplied
// owner workflow ids only.
func (r *Runtime) DrainEvents(owners ...string) map[task.Key]task.State {
	return r.core.DrainEvents(owners...)
}

// Shutdown stops the heartbeat loop and waits for the backend to flush all
// delegated work.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.stopLoop()
	return r.backend.End(ctx)
}

// Terminate stops the heartbeat loop and instructs the backend to halt
// outstanding work.
func (r *Runtime) Terminate(ctx context.Context) error {
	r.stopLoop()
	return r.backend.Terminate(ctx)
}

func (r *Runtime) stopLoop() {
	if !r.started.CompareAndSwap(true, false) {
		return
	}
	r.cancelFn()
	<-r.loopDone
}

func (r *Runtime) logf(format string, args ...interface{}) {
	if r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
