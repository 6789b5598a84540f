package task

import (
	"fmt"
	"time"
)

// Key uniquely identifies a unit of work: the owning workflow, the task
// within it, and the logical execution time of the run. Keys are value types
// and are used directly as map keys throughout the core, so equality must be
// structural.
type Key struct {
	WorkflowID  string
	TaskID      string
	LogicalTime time.Time
}

// NewKey builds a Key with a normalized logical time. The timestamp is
// converted to UTC, which also strips any monotonic clock reading so that two
// keys built from the same instant always compare equal.
func NewKey(workflowID, taskID string, logicalTime time.Time) Key {
	return Key{
		WorkflowID:  workflowID,
		TaskID:      taskID,
		LogicalTime: logicalTime.UTC(),
	}
}

// ID returns a stable, path-safe identifier derived from the key, suitable
// for storage locations and log correlation.
func (k Key) ID() string {
	return fmt.Sprintf("%s_%s_%d", k.WorkflowID, k.TaskID, k.LogicalTime.Unix())
}

// IsZero reports whether the key carries no identity.
func (k Key) IsZero() bool {
	return k.WorkflowID == "" && k.TaskID == "" && k.LogicalTime.IsZero()
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s %s", k.WorkflowID, k.TaskID, k.LogicalTime.Format(time.RFC3339))
}
