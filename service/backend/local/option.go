package local

import (
	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/messaging"
)

// Option customises the local backend.
type Option func(*Service)

// WithReporter sets the completion reporter, typically the executor core.
func WithReporter(reporter backend.Reporter) Option {
	return func(s *Service) {
		s.reporter = reporter
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.config.WorkerCount = count
		}
	}
}

// WithQueue sets the submission queue implementation.
func WithQueue(queue messaging.Queue[task.Submission]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithRunner sets the command runner; defaults to a local shell session.
func WithRunner(runner Runner) Option {
	return func(s *Service) {
		s.runner = runner
	}
}

// WithConfig sets the whole configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
