package fs

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/dao"
)

// Service implements filesystem-backed task-instance storage. The location is
// an afs URL, so instances can live on the local disk (file://), in memory
// (mem://) or any other scheme afs supports.
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

// Ensure Service implements dao.Service.
var _ dao.Service[task.Key, task.Instance] = (*Service)(nil)

// New creates a filesystem instance store rooted at the given afs URL.
func New(baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	return &Service{baseURL: baseURL, fs: afs.New()}, nil
}

// Save persists an instance as a YAML document.
func (s *Service) Save(ctx context.Context, instance *task.Instance) error {
	if instance == nil {
		return dao.ErrNilEntity
	}
	if instance.Key.IsZero() {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}
	location := s.instanceURL(instance.Key)
	if err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save instance to %s: %w", location, err)
	}
	return nil
}

// Load retrieves an instance or dao.ErrNotFound.
func (s *Service) Load(ctx context.Context, key task.Key) (*task.Instance, error) {
	if key.IsZero() {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location := s.instanceURL(key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check instance %s: %w", location, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance %s: %w", location, err)
	}
	instance := &task.Instance{}
	if err := yaml.Unmarshal(data, instance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance %s: %w", location, err)
	}
	return instance, nil
}

// Delete removes an instance document.
func (s *Service) Delete(ctx context.Context, key task.Key) error {
	if key.IsZero() {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	location := s.instanceURL(key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check instance %s: %w", location, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete instance %s: %w", location, err)
	}
	return nil
}

// List returns all stored instances, optionally filtered by State. Unreadable
// documents are skipped so one corrupt file does not hide the rest.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list instances at %s: %w", s.baseURL, err)
	}

	var instances []*task.Instance
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".yaml") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		instance := &task.Instance{}
		if err := yaml.Unmarshal(data, instance); err != nil {
			continue
		}
		if !dao.FilterByState(string(instance.State), parameters) {
			continue
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// instanceURL returns the document location for a key.
func (s *Service) instanceURL(key task.Key) string {
	return url.Join(s.baseURL, key.ID()+".yaml")
}
