package memory

import (
	"context"
	"sync"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/dao"
)

// Service implements in-memory task-instance storage. All operations are
// thread-safe and return copies of the underlying records to prevent data
// races when callers mutate the returned instances.
type Service struct {
	instances map[task.Key]*task.Instance
	mux       sync.RWMutex
}

// Compile-time check that Service implements the generic DAO interface.
var _ dao.Service[task.Key, task.Instance] = (*Service)(nil)

// New creates an empty in-memory instance store.
func New() *Service {
	return &Service{instances: map[task.Key]*task.Instance{}}
}

// Save persists (a clone of) the supplied instance.
func (s *Service) Save(_ context.Context, instance *task.Instance) error {
	if instance == nil {
		return dao.ErrNilEntity
	}
	if instance.Key.IsZero() {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	s.instances[instance.Key] = instance.Clone()
	return nil
}

// Load retrieves a copy of the instance or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, key task.Key) (*task.Instance, error) {
	if key.IsZero() {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	instance, ok := s.instances[key]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return instance.Clone(), nil
}

// Delete removes an instance.
func (s *Service) Delete(_ context.Context, key task.Key) error {
	if key.IsZero() {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.instances[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.instances, key)
	return nil
}

// List returns copies of the stored instances, optionally filtered by State.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*task.Instance, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*task.Instance, 0, len(s.instances))
	for _, instance := range s.instances {
		if !dao.FilterByState(string(instance.State), parameters) {
			continue
		}
		out = append(out, instance.Clone())
	}
	return out, nil
}
