package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	_ "github.com/viant/afs/mem"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/dao"
)

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, err := New("mem://localhost/instances")
	assert.NoError(t, err)

	key := task.NewKey("wf", "extract", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	instance := task.NewInstance(key, task.Command{"echo", "payload"})
	instance.State = task.StateRunning
	instance.StartTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.NoError(t, svc.Save(ctx, instance))

	loaded, err := svc.Load(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, task.StateRunning, loaded.State)
	assert.Equal(t, task.Command{"echo", "payload"}, loaded.Command)
	assert.True(t, loaded.StartTime.Equal(instance.StartTime))

	listed, err := svc.List(ctx, dao.NewParameter("State", string(task.StateRunning)))
	assert.NoError(t, err)
	assert.Len(t, listed, 1)

	assert.NoError(t, svc.Delete(ctx, key))
	_, err = svc.Load(ctx, key)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestServiceMissing(t *testing.T) {
	ctx := context.Background()
	svc, err := New("mem://localhost/empty")
	assert.NoError(t, err)

	key := task.NewKey("wf", "absent", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err = svc.Load(ctx, key)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, key), dao.ErrNotFound)

	_, err = New("")
	assert.Error(t, err)
}
