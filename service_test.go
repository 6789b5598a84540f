package execq

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	_ "github.com/viant/afs/mem"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/backend/local"
	"github.com/execq/execq/service/event"
)

// fakeRunner stands in for the shell so tests never spawn processes.
type fakeRunner struct {
	mu       sync.Mutex
	commands []task.Command
}

func (r *fakeRunner) Run(_ context.Context, command task.Command, _ time.Duration) (string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command.Clone())
	return "", 0, nil
}

func (r *fakeRunner) Close() error { return nil }

func testKey(taskID string) task.Key {
	return task.NewKey("wf", taskID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestServiceEndToEnd(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{}

	events := event.New()
	var seen []event.Type
	var seenMu sync.Mutex
	listener := events.Listen(func(e event.Event) {
		seenMu.Lock()
		seen = append(seen, e.Type)
		seenMu.Unlock()
	})
	defer listener.Stop()

	svc, err := New(
		WithParallelism(2),
		WithEventService(events),
		WithBackendRunner(runner))
	require.NoError(t, err)

	runtime := svc.Runtime()
	require.NotEmpty(t, runtime.ID())
	require.NoError(t, runtime.Start(ctx))

	runtime.Submit(ctx, testKey("a"), task.Command{"echo", "a"}, 5, "default")
	runtime.Submit(ctx, testKey("b"), task.Command{"echo", "b"}, 1, "default")
	require.NoError(t, runtime.Heartbeat(ctx))

	require.NoError(t, runtime.Shutdown(ctx))

	drained := runtime.DrainEvents()
	assert.Equal(t, map[task.Key]task.State{
		testKey("a"): task.StateSuccess,
		testKey("b"): task.StateSuccess,
	}, drained)
	assert.False(t, runtime.Has(testKey("a")))

	runner.mu.Lock()
	assert.Len(t, runner.commands, 2)
	runner.mu.Unlock()
}

func TestServiceDefaults(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	assert.Equal(t, 32, svc.Config().Executor.Parallelism)
	assert.Equal(t, 5*time.Second, svc.Config().Heartbeat.Interval())
	assert.NotNil(t, svc.Executor())
	assert.NotNil(t, svc.Runtime())
}

func TestServiceRejectsInvalidConfig(t *testing.T) {
	_, err := NewFromConfig(&Config{
		Executor:  ExecutorConfig{Parallelism: -1},
		Heartbeat: HeartbeatConfig{IntervalMs: 1000},
		Backend:   BackendConfig{Workers: 1, CommandTimeoutMs: 1000},
	})
	assert.Error(t, err)
}

func TestNewFromConfigURL(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	err := fs.Upload(ctx, "mem://localhost/execq/config.yaml", file.DefaultFileOsMode,
		strings.NewReader("executor:\n  parallelism: 7\nheartbeat:\n  intervalMs: 250\nbackend:\n  workers: 2\n  commandTimeoutMs: 1000\n"))
	require.NoError(t, err)

	svc, err := NewFromConfigURL(ctx, "mem://localhost/execq/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 7, svc.Config().Executor.Parallelism)
	assert.Equal(t, 250*time.Millisecond, svc.Config().Heartbeat.Interval())
	assert.Equal(t, 7, svc.Executor().Parallelism())
}

func TestNewFromConfigURLHonorsMetaBaseURL(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	err := fs.Upload(ctx, "mem://localhost/execq/conf/app.yaml", file.DefaultFileOsMode,
		strings.NewReader("executor:\n  parallelism: 3\n"))
	require.NoError(t, err)

	svc, err := NewFromConfigURL(ctx, "app.yaml", WithMetaBaseURL("mem://localhost/execq/conf"))
	require.NoError(t, err)
	assert.Equal(t, 3, svc.Config().Executor.Parallelism)

	// the same loader stays available for supplementary assets
	require.NotNil(t, svc.Meta())
	ok, err := svc.Meta().Exists(ctx, "app.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRuntimeHeartbeatLoop(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{}
	config := DefaultConfig()
	config.Heartbeat.IntervalMs = 20
	config.Executor.Parallelism = 1

	svc, err := NewFromConfig(config, WithBackendRunner(runner))
	require.NoError(t, err)

	runtime := svc.Runtime()
	require.NoError(t, runtime.Start(ctx))
	defer func() { _ = runtime.Terminate(ctx) }()

	runtime.Submit(ctx, testKey("loop"), task.Command{"echo", "loop"}, 1, "")

	// the loop picks the task up without a manual heartbeat
	assert.Eventually(t, func() bool {
		events := runtime.DrainEvents()
		return events[testKey("loop")] == task.StateSuccess
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, runtime.Shutdown(ctx))
}

func TestWithBackendRunnerWiring(t *testing.T) {
	runner := &fakeRunner{}
	svc, err := New(WithBackendRunner(runner))
	require.NoError(t, err)
	_, ok := svc.backend.(*local.Service)
	assert.True(t, ok)
}
