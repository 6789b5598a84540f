package executor

import (
	"sort"

	"github.com/execq/execq/model/task"
)

// record is one admission-queue entry: the payload to dispatch, its
// selection weight and an optional reference to the externally-owned
// instance the entry was derived from.
type record struct {
	key      task.Key
	command  task.Command
	priority int
	queue    string
	instance *task.Instance
	seq      uint64
}

// admissionQueue is the holding area for submitted, not-yet-dispatched work.
// Selection is priority-driven; the per-record sequence number preserves
// submission order so that ties break deterministically.
type admissionQueue struct {
	records map[task.Key]*record
	nextSeq uint64
}

func newAdmissionQueue() *admissionQueue {
	return &admissionQueue{records: map[task.Key]*record{}}
}

func (q *admissionQueue) insert(rec *record) {
	rec.seq = q.nextSeq
	q.nextSeq++
	q.records[rec.key] = rec
}

func (q *admissionQueue) contains(key task.Key) bool {
	_, ok := q.records[key]
	return ok
}

func (q *admissionQueue) get(key task.Key) *record {
	return q.records[key]
}

func (q *admissionQueue) remove(key task.Key) {
	delete(q.records, key)
}

func (q *admissionQueue) len() int {
	return len(q.records)
}

// sorted returns the selection list: priority descending, submission order
// among equal priorities. Nothing else influences the ordering.
func (q *admissionQueue) sorted() []*record {
	out := make([]*record, 0, len(q.records))
	for _, rec := range q.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}
