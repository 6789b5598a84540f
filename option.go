package execq

import (
	"log"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/backend/local"
	"github.com/execq/execq/service/dao"
	"github.com/execq/execq/service/event"
	"github.com/execq/execq/service/meta"
	"github.com/execq/execq/service/stats"
	"github.com/execq/execq/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service assembly.
type Option func(s *Service)

// WithConfig sets the full configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithParallelism sets the dispatch concurrency ceiling; 0 means unlimited.
func WithParallelism(parallelism int) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Executor.Parallelism = parallelism
	}
}

// WithBackend sets the execution backend; defaults to the local worker pool.
func WithBackend(b backend.Backend) Option {
	return func(s *Service) {
		s.backend = b
	}
}

// WithBackendRunner sets the command runner used by the default local
// backend. Ignored when WithBackend supplies a backend explicitly.
func WithBackendRunner(runner local.Runner) Option {
	return func(s *Service) {
		s.backendRunner = runner
	}
}

// WithInstanceDAO sets the authoritative task-instance store.
func WithInstanceDAO(instances dao.Service[task.Key, task.Instance]) Option {
	return func(s *Service) {
		s.instances = instances
	}
}

// WithStats sets the gauge recorder used by heartbeats.
func WithStats(recorder stats.Recorder) Option {
	return func(s *Service) {
		s.statsRecorder = recorder
	}
}

// WithEventService enables lifecycle event publishing.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithMetaService sets the meta service.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the base URL for relative asset locations.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithLogger sets the decision log destination; nil disables logging.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used; otherwise spans are written to the supplied file
// path. Safe to call multiple times, the first successful initialisation
// wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, enabling OTLP, Jaeger, Zipkin or any other SDK-supported
// integration.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}

// WithMetrics configures the OpenTelemetry gauge recorder. If outputFile is
// empty metrics are written to stdout.
func WithMetrics(outputFile string) Option {
	return func(s *Service) {
		if err := stats.Init(outputFile); err != nil {
			return
		}
		s.statsRecorder = stats.NewOtel("github.com/execq/execq")
	}
}
