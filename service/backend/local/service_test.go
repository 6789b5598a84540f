package local

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execq/execq/model/task"
)

// fakeRunner fails any command whose first token is "fail".
type fakeRunner struct {
	mu   sync.Mutex
	runs []string
}

func (r *fakeRunner) Run(_ context.Context, command task.Command, _ time.Duration) (string, int, error) {
	r.mu.Lock()
	r.runs = append(r.runs, command.String())
	r.mu.Unlock()
	if len(command) > 0 && command[0] == "fail" {
		return "", 1, fmt.Errorf("command failed")
	}
	return "ok", 0, nil
}

func (r *fakeRunner) Close() error { return nil }

// recordingReporter collects terminal states keyed by task key.
type recordingReporter struct {
	mu     sync.Mutex
	states map[task.Key]task.State
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{states: map[task.Key]task.State{}}
}

func (r *recordingReporter) Success(key task.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[key] = task.StateSuccess
	return nil
}

func (r *recordingReporter) Fail(key task.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[key] = task.StateFailed
	return nil
}

func (r *recordingReporter) state(key task.Key) task.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[key]
}

func testKey(taskID string) task.Key {
	return task.NewKey("wf", taskID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestServiceExecutesAndReports(t *testing.T) {
	ctx := context.Background()
	reporter := newRecordingReporter()
	runner := &fakeRunner{}

	svc, err := New(WithReporter(reporter), WithRunner(runner), WithWorkers(3))
	require.NoError(t, err)
	require.NoError(t, svc.Start(ctx))

	ok := testKey("ok")
	bad := testKey("bad")
	assert.NoError(t, svc.ExecuteAsync(ctx, task.Submission{Key: ok, Command: task.Command{"echo", "hi"}}))
	assert.NoError(t, svc.ExecuteAsync(ctx, task.Submission{Key: bad, Command: task.Command{"fail", "now"}}))

	endCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	assert.NoError(t, svc.End(endCtx))

	assert.Equal(t, task.StateSuccess, reporter.state(ok))
	assert.Equal(t, task.StateFailed, reporter.state(bad))
}

func TestServiceRejectsAfterTerminate(t *testing.T) {
	ctx := context.Background()
	reporter := newRecordingReporter()

	svc, err := New(WithReporter(reporter), WithRunner(&fakeRunner{}), WithWorkers(1))
	require.NoError(t, err)
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Terminate(ctx))

	err = svc.ExecuteAsync(ctx, task.Submission{Key: testKey("late")})
	assert.Error(t, err)
}

func TestNewRequiresReporter(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}
