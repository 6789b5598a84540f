package executor

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/execq/execq/internal/clock"
	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/dao"
	"github.com/execq/execq/service/event"
	"github.com/execq/execq/service/stats"
	"github.com/execq/execq/tracing"
)

// Service is the admission-control and dispatch core. One owning controller
// loop is expected to drive Submit/Heartbeat/DrainEvents; backends may call
// ChangeState/Success/Fail from their own goroutines, so all access to the
// queue, running set and event buffer is guarded by a single mutex.
type Service struct {
	parallelism int
	backend     backend.Backend
	instances   dao.Service[task.Key, task.Instance]
	stats       stats.Recorder
	events      *event.Service
	logger      *log.Logger

	mu          sync.Mutex
	queued      *admissionQueue
	running     map[task.Key]task.Command
	eventBuffer map[task.Key]task.State
}

// New creates the core. A backend is required; the parallelism ceiling,
// instance store, gauge recorder and event service are optional.
func New(options ...Option) (*Service, error) {
	s := &Service{
		stats:       stats.Noop{},
		queued:      newAdmissionQueue(),
		running:     map[task.Key]task.Command{},
		eventBuffer: map[task.Key]task.State{},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.backend == nil {
		return nil, ErrBackendRequired
	}
	if s.parallelism < 0 {
		s.parallelism = 0
	}
	return s, nil
}

// Parallelism returns the configured concurrency ceiling, 0 for unlimited.
func (s *Service) Parallelism() int {
	return s.parallelism
}

// Submit places work into the admission queue. A key already queued or
// running is silently dropped: submission is idempotent per key.
func (s *Service) Submit(ctx context.Context, key task.Key, command task.Command, priority int, queueName string) {
	s.submit(ctx, &record{
		key:      key,
		command:  command,
		priority: priority,
		queue:    queueName,
	})
}

// QueueInstance submits work described by an externally-owned task instance,
// deriving command, priority and target queue from the record and keeping a
// reference to it for the dispatcher's running-time gauge.
func (s *Service) QueueInstance(ctx context.Context, instance *task.Instance) {
	if instance == nil {
		return
	}
	s.submit(ctx, &record{
		key:      instance.Key,
		command:  instance.Command,
		priority: instance.PriorityWeight,
		queue:    instance.Queue,
		instance: instance,
	})
}

func (s *Service) submit(ctx context.Context, rec *record) {
	s.mu.Lock()
	if s.queued.contains(rec.key) || s.isRunning(rec.key) {
		s.mu.Unlock()
		s.logf("duplicate submission ignored key=%v", rec.key)
		s.publish(ctx, event.NewEvent(event.TypeDeduped, rec.key, task.StateNone))
		return
	}
	s.queued.insert(rec)
	s.mu.Unlock()

	s.logf("adding to queue key=%v command=%q", rec.key, rec.command.String())
	s.publish(ctx, event.NewEvent(event.TypeQueued, rec.key, task.StateNone))
}

// Has reports whether the key is known to the core, i.e. queued or running.
func (s *Service) Has(key task.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued.contains(key) || s.isRunning(key)
}

// IsQueued reports whether the key sits in the admission queue.
func (s *Service) IsQueued(key task.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued.contains(key)
}

// IsRunning reports whether the key has been delegated to the backend.
func (s *Service) IsRunning(key task.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning(key)
}

// QueuedCount returns the admission queue size.
func (s *Service) QueuedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued.len()
}

// RunningCount returns the running set size.
func (s *Service) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// Heartbeat runs one dispatch pass: it computes free capacity, emits gauges,
// moves the highest-priority eligible work into the running set and hands it
// to the backend, then lets the backend reconcile via Sync. It is driven by
// the owning controller and never schedules itself.
func (s *Service) Heartbeat(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "executor.Heartbeat", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()

	var openSlots int
	if s.parallelism == 0 {
		openSlots = s.queued.len()
	} else {
		openSlots = s.parallelism - len(s.running)
		if openSlots < 0 {
			openSlots = 0
		}
	}

	s.logf("%d running task instances", len(s.running))
	s.logf("%d in queue", s.queued.len())
	s.logf("%d open slots", openSlots)

	s.stats.Gauge(stats.GaugeRunningTasks, float64(len(s.running)))
	s.stats.Gauge(stats.GaugeQueuedTasks, float64(s.queued.len()))
	s.stats.Gauge(stats.GaugeOpenSlots, float64(openSlots))

	// Outstanding running time is approximated the way downstream dashboards
	// expect it: iterate the running set and keep the value from the last key
	// that still appears in the queue snapshot, not a maximum over all
	// running tasks.
	outstandingSecs := 0.0
	now := clock.Now()
	for key := range s.running {
		if rec := s.queued.get(key); rec != nil && rec.instance != nil {
			outstandingSecs = now.Sub(rec.instance.StartTime).Seconds()
		}
	}
	s.stats.Gauge(stats.GaugeOutstandingRunningSeconds, outstandingSecs)

	// Lifecycle events publish after the lock is released so that a slow
	// observer can never stall admission or state reporting.
	var lifecycle []event.Event

	selection := s.queued.sorted()
	iterations := min(openSlots, s.queued.len())
	for i := 0; i < iterations; i++ {
		rec := selection[i]
		s.queued.remove(rec.key)

		// Last-chance check against the authoritative instance state:
		// another controller may have started this task since it was
		// queued here. This reduces the double-dispatch window, it does
		// not close it.
		if s.instanceRunning(ctx, rec.key) {
			s.logf("task already running, not sending to backend key=%v", rec.key)
			lifecycle = append(lifecycle, event.NewEvent(event.TypeDropped, rec.key, task.StateRunning))
			continue
		}

		s.running[rec.key] = rec.command
		if execErr := s.backend.ExecuteAsync(ctx, task.Submission{
			Key:     rec.key,
			Command: rec.command,
			Queue:   rec.queue,
		}); execErr != nil {
			// Covers backend.ErrNotImplemented as well: a missing required
			// capability aborts the heartbeat instead of being swallowed.
			s.mu.Unlock()
			s.publishAll(ctx, lifecycle)
			return execErr
		}
		s.logf("dispatched key=%v queue=%q", rec.key, rec.queue)
		lifecycle = append(lifecycle, event.NewEvent(event.TypeDispatched, rec.key, task.StateNone))
	}
	s.mu.Unlock()
	s.publishAll(ctx, lifecycle)

	// The sync hook runs outside the core lock so that backends which report
	// completions synchronously (e.g. the sequential backend) can call back
	// into ChangeState.
	return s.backend.Sync(ctx)
}

// ChangeState removes the key from the running set and buffers the reported
// state for the next drain. Reporting a key that is not running is a caller
// contract violation and fails with ErrNotRunning.
func (s *Service) ChangeState(key task.Key, state task.State) error {
	s.mu.Lock()
	if !s.isRunning(key) {
		s.mu.Unlock()
		return ErrNotRunning
	}
	delete(s.running, key)
	s.eventBuffer[key] = state
	s.mu.Unlock()

	s.logf("state change key=%v state=%v", key, state)
	s.publish(context.Background(), event.NewEvent(event.TypeStateChanged, key, state))
	return nil
}

// Success reports the task as completed successfully.
func (s *Service) Success(key task.Key) error {
	return s.ChangeState(key, task.StateSuccess)
}

// Fail reports the task as failed.
func (s *Service) Fail(key task.Key) error {
	return s.ChangeState(key, task.StateFailed)
}

// DrainEvents returns buffered terminal states and removes them from the
// buffer. With owner workflow ids supplied, only matching entries are
// returned and cleared; the rest stay buffered for a later drain.
func (s *Service) DrainEvents(owners ...string) map[task.Key]task.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(owners) == 0 {
		cleared := s.eventBuffer
		s.eventBuffer = map[task.Key]task.State{}
		return cleared
	}

	ownerSet := make(map[string]bool, len(owners))
	for _, owner := range owners {
		ownerSet[owner] = true
	}
	cleared := map[task.Key]task.State{}
	for key, state := range s.eventBuffer {
		if ownerSet[key.WorkflowID] {
			cleared[key] = state
			delete(s.eventBuffer, key)
		}
	}
	return cleared
}

// instanceRunning loads the authoritative instance record and reports
// whether it is already marked running. A missing record or store means the
// task cannot be running elsewhere; a store error is logged and treated the
// same, dispatch being the safer default for this best-effort check.
func (s *Service) instanceRunning(ctx context.Context, key task.Key) bool {
	if s.instances == nil {
		return false
	}
	instance, err := s.instances.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, dao.ErrNotFound) {
			s.logf("failed to load instance for race check key=%v: %v", key, err)
		}
		return false
	}
	return instance != nil && instance.State == task.StateRunning
}

func (s *Service) isRunning(key task.Key) bool {
	_, ok := s.running[key]
	return ok
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logf("failed to publish event type=%v key=%v: %v", e.Type, e.Key, err)
	}
}

func (s *Service) publishAll(ctx context.Context, events []event.Event) {
	for _, e := range events {
		s.publish(ctx, e)
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

// Reporter compliance: backends report completion through these methods.
var _ backend.Reporter = (*Service)(nil)
