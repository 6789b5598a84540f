package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execq/execq/model/task"
)

func queueKey(taskID string) task.Key {
	return task.NewKey("wf", taskID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func TestAdmissionQueueSortedByPriority(t *testing.T) {
	q := newAdmissionQueue()
	q.insert(&record{key: queueKey("low"), priority: 1})
	q.insert(&record{key: queueKey("high"), priority: 9})
	q.insert(&record{key: queueKey("mid"), priority: 5})

	sorted := q.sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, queueKey("high"), sorted[0].key)
	assert.Equal(t, queueKey("mid"), sorted[1].key)
	assert.Equal(t, queueKey("low"), sorted[2].key)
}

func TestAdmissionQueueTieBreaksOnInsertionOrder(t *testing.T) {
	q := newAdmissionQueue()
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		q.insert(&record{key: queueKey(id), priority: 3})
	}

	sorted := q.sorted()
	require.Len(t, sorted, len(ids))
	for i, id := range ids {
		assert.Equal(t, queueKey(id), sorted[i].key)
	}
}

func TestAdmissionQueueMembership(t *testing.T) {
	q := newAdmissionQueue()
	k := queueKey("a")
	assert.False(t, q.contains(k))
	assert.Nil(t, q.get(k))

	q.insert(&record{key: k, priority: 1})
	assert.True(t, q.contains(k))
	assert.NotNil(t, q.get(k))
	assert.Equal(t, 1, q.len())

	q.remove(k)
	assert.False(t, q.contains(k))
	assert.Equal(t, 0, q.len())
}

func TestAdmissionQueueReinsertAfterRemove(t *testing.T) {
	q := newAdmissionQueue()
	q.insert(&record{key: queueKey("a"), priority: 1})
	q.insert(&record{key: queueKey("b"), priority: 1})
	q.remove(queueKey("a"))

	// re-insertion gets a fresh sequence number, so it sorts after b
	q.insert(&record{key: queueKey("a"), priority: 1})
	sorted := q.sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, queueKey("b"), sorted[0].key)
	assert.Equal(t, queueKey("a"), sorted[1].key)
}
