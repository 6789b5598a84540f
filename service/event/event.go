package event

import (
	"time"

	"github.com/execq/execq/model/task"
)

// Type classifies a dispatch lifecycle event.
type Type string

const (
	// TypeQueued is published when a submission is accepted.
	TypeQueued Type = "queued"

	// TypeDeduped is published when a duplicate submission is dropped.
	TypeDeduped Type = "deduped"

	// TypeDispatched is published when work is handed to the backend.
	TypeDispatched Type = "dispatched"

	// TypeDropped is published when the dispatch-time race check finds the
	// task already running elsewhere.
	TypeDropped Type = "dropped"

	// TypeStateChanged is published when a backend reports a terminal state.
	TypeStateChanged Type = "stateChanged"
)

// Event describes one dispatch decision.
type Event struct {
	Type      Type       `json:"type"`
	Key       task.Key   `json:"key"`
	State     task.State `json:"state,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType Type, key task.Key, state task.State) Event {
	return Event{
		Type:      eventType,
		Key:       key,
		State:     state,
		CreatedAt: time.Now(),
	}
}
