// Package shell runs opaque command payloads on the local host. It is the
// execution primitive shared by the bundled backends; remote transports are
// out of scope and belong to dedicated backend integrations.
package shell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"

	"github.com/execq/execq/model/task"
)

// Service owns a lazily created local shell session.
type Service struct {
	env     map[string]string
	session *gosh.Service
	mux     sync.Mutex
}

// New creates a shell service; env entries are exported into the session.
func New(env map[string]string) *Service {
	return &Service{env: env}
}

// Run executes one command payload and returns its combined output and exit
// status. A zero timeout defaults to one minute.
func (s *Service) Run(ctx context.Context, command task.Command, timeout time.Duration) (string, int, error) {
	session, err := s.getSession(ctx)
	if err != nil {
		return "", -1, fmt.Errorf("failed to get session: %w", err)
	}
	if timeout == 0 {
		timeout = time.Minute
	}

	started := time.Now()
	output, status, err := session.Run(ctx, command.String(), runner.WithTimeout(int(timeout.Milliseconds())))
	if elapsed := time.Since(started); elapsed > timeout && err == nil {
		err = fmt.Errorf("command %v timed out after %s", command, elapsed)
	}
	if err != nil {
		return output, status, err
	}
	if status != 0 {
		return output, status, fmt.Errorf("command %v exited with status %d", command, status)
	}
	return output, status, nil
}

// getSession returns the shared session, creating it on first use.
func (s *Service) getSession(ctx context.Context) (*gosh.Service, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.session != nil {
		return s.session, nil
	}
	var options []runner.Option
	if len(s.env) > 0 {
		options = append(options, runner.WithEnvironment(s.env))
	}
	session, err := gosh.New(ctx, local.New(options...))
	if err != nil {
		return nil, err
	}
	s.session = session
	return session, nil
}

// Close releases the underlying session.
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}
