package execq

import (
	"context"
	"fmt"
	"log"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend"
	"github.com/execq/execq/service/backend/local"
	"github.com/execq/execq/service/dao"
	imemory "github.com/execq/execq/service/dao/instance/memory"
	"github.com/execq/execq/service/event"
	"github.com/execq/execq/service/executor"
	"github.com/execq/execq/service/meta"
	"github.com/execq/execq/service/stats"
)

// Service assembles the admission core, a backend and the runtime that drives
// them. Construction is option-driven; every collaborator left unset gets the
// in-memory/local default.
type Service struct {
	config        *Config
	metaService   *meta.Service
	metaBaseURL   string
	backend       backend.Backend
	backendRunner local.Runner
	instances     dao.Service[task.Key, task.Instance]
	statsRecorder stats.Recorder
	eventService  *event.Service
	logger        *log.Logger

	core    *executor.Service
	runtime *Runtime
}

// reporterProxy breaks the construction cycle between the core and the
// default backend: the backend is built first against the proxy, the core is
// bound once it exists.
type reporterProxy struct {
	target backend.Reporter
}

func (p *reporterProxy) Success(key task.Key) error {
	if p.target == nil {
		return fmt.Errorf("reporter not bound")
	}
	return p.target.Success(key)
}

func (p *reporterProxy) Fail(key task.Key) error {
	if p.target == nil {
		return fmt.Errorf("reporter not bound")
	}
	return p.target.Fail(key)
}

// New creates a fully wired service.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromConfig creates a service from a validated configuration; options
// apply on top of it.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return New(append([]Option{WithConfig(config)}, options...)...)
}

// NewFromConfigURL loads the configuration document at URL via the meta
// service and builds the service from it. WithMetaService and WithMetaBaseURL
// options apply to the load itself, so the URL may be relative to the
// configured base.
func NewFromConfigURL(ctx context.Context, URL string, options ...Option) (*Service, error) {
	seed := &Service{}
	for _, option := range options {
		option(seed)
	}
	metaService := seed.metaService
	if metaService == nil {
		metaService = meta.New(seed.metaBaseURL)
	}
	config := DefaultConfig()
	if err := metaService.Load(ctx, URL, config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewFromConfig(config, options...)
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.metaService == nil {
		s.metaService = meta.New(s.metaBaseURL)
	}
	if s.instances == nil {
		s.instances = imemory.New()
	}

	var proxy *reporterProxy
	if s.backend == nil {
		proxy = &reporterProxy{}
		localOptions := []local.Option{
			local.WithReporter(proxy),
			local.WithConfig(local.Config{
				WorkerCount:    s.config.Backend.Workers,
				CommandTimeout: s.config.Backend.CommandTimeout(),
			}),
		}
		if s.backendRunner != nil {
			localOptions = append(localOptions, local.WithRunner(s.backendRunner))
		}
		b, err := local.New(localOptions...)
		if err != nil {
			return err
		}
		s.backend = b
	}

	core, err := executor.New(
		executor.WithBackend(s.backend),
		executor.WithParallelism(s.config.Executor.Parallelism),
		executor.WithInstanceDAO(s.instances),
		executor.WithStats(s.statsRecorder),
		executor.WithEventService(s.eventService),
		executor.WithLogger(s.logger))
	if err != nil {
		return err
	}
	if proxy != nil {
		proxy.target = core
	}
	s.core = core
	s.runtime = newRuntime(core, s.backend, s.config.Heartbeat.Interval(), s.logger)
	return nil
}

// Runtime returns the heartbeat-driven runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Executor exposes the admission core for callers that drive heartbeats
// themselves instead of through the runtime loop.
func (s *Service) Executor() *executor.Service {
	return s.core
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Meta returns the asset loader, scoped to the configured base URL. Hosts use
// it to load supplementary documents next to the configuration.
func (s *Service) Meta() *meta.Service {
	return s.metaService
}
