package executor

import (
	"log"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/dao"
	"github.com/execq/execq/service/event"
	"github.com/execq/execq/service/stats"
)

// Option customises the executor core.
type Option func(*Service)

// WithBackend sets the execution backend. Required.
func WithBackend(b backend.Backend) Option {
	return func(s *Service) {
		s.backend = b
	}
}

// WithParallelism sets the concurrency ceiling; 0 means unlimited.
func WithParallelism(parallelism int) Option {
	return func(s *Service) {
		s.parallelism = parallelism
	}
}

// WithInstanceDAO sets the authoritative task-instance store consulted by
// the dispatch-time race check.
func WithInstanceDAO(instances dao.Service[task.Key, task.Instance]) Option {
	return func(s *Service) {
		s.instances = instances
	}
}

// WithStats sets the gauge recorder; defaults to a no-op.
func WithStats(recorder stats.Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.stats = recorder
		}
	}
}

// WithEventService enables lifecycle event publishing.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithLogger sets the decision log destination; nil disables logging.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
