package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/execq/execq/model/task"
	"github.com/execq/execq/service/dao"
)

func testKey(taskID string) task.Key {
	return task.NewKey("wf", taskID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := New()
	key := testKey("extract")

	_, err := svc.Load(ctx, key)
	assert.ErrorIs(t, err, dao.ErrNotFound)

	instance := task.NewInstance(key, task.Command{"echo", "hi"})
	instance.State = task.StateQueued
	assert.NoError(t, svc.Save(ctx, instance))

	loaded, err := svc.Load(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, task.StateQueued, loaded.State)

	// stored copy must be isolated from caller mutation
	loaded.State = task.StateFailed
	again, err := svc.Load(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, task.StateQueued, again.State)

	assert.NoError(t, svc.Delete(ctx, key))
	assert.ErrorIs(t, svc.Delete(ctx, key), dao.ErrNotFound)
}

func TestServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := New()

	assert.ErrorIs(t, svc.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, svc.Save(ctx, &task.Instance{}), dao.ErrInvalidID)
	_, err := svc.Load(ctx, task.Key{})
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}

func TestServiceListFilter(t *testing.T) {
	ctx := context.Background()
	svc := New()

	running := task.NewInstance(testKey("a"), nil)
	running.State = task.StateRunning
	queued := task.NewInstance(testKey("b"), nil)
	queued.State = task.StateQueued
	assert.NoError(t, svc.Save(ctx, running))
	assert.NoError(t, svc.Save(ctx, queued))

	all, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	onlyRunning, err := svc.List(ctx, dao.NewParameter("State", string(task.StateRunning)))
	assert.NoError(t, err)
	assert.Len(t, onlyRunning, 1)
	assert.Equal(t, testKey("a"), onlyRunning[0].Key)
}
