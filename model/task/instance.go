package task

import (
	"strings"
	"time"
)

// Command is the opaque payload handed to a backend. The core never
// interprets it; the bundled backends treat it as a shell command line.
type Command []string

func (c Command) String() string {
	return strings.Join(c, " ")
}

// Clone returns an independent copy of the command.
func (c Command) Clone() Command {
	if c == nil {
		return nil
	}
	out := make(Command, len(c))
	copy(out, c)
	return out
}

// Instance is the externally-owned, authoritative record of a task run. The
// core holds references to instances but never owns them: the instance store
// is the source of truth the dispatcher re-checks before handing work to a
// backend.
type Instance struct {
	Key            Key       `yaml:"key" json:"key"`
	State          State     `yaml:"state" json:"state"`
	Command        Command   `yaml:"command,omitempty" json:"command,omitempty"`
	PriorityWeight int       `yaml:"priorityWeight,omitempty" json:"priorityWeight,omitempty"`
	Queue          string    `yaml:"queue,omitempty" json:"queue,omitempty"`
	StartTime      time.Time `yaml:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime        time.Time `yaml:"endTime,omitempty" json:"endTime,omitempty"`
}

// NewInstance creates an instance in its initial state.
func NewInstance(key Key, command Command) *Instance {
	return &Instance{Key: key, Command: command.Clone()}
}

// Clone returns a deep copy so that stores can hand out instances without
// sharing mutable state with callers.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Command = i.Command.Clone()
	return &clone
}

// SetState transitions the instance and maintains the start/end timestamps
// the dispatcher's outstanding-seconds gauge relies on.
func (i *Instance) SetState(state State, at time.Time) {
	i.State = state
	switch {
	case state == StateRunning:
		i.StartTime = at
	case state.IsTerminal():
		i.EndTime = at
	}
}

// Submission bundles everything a backend needs to execute one unit of work.
type Submission struct {
	Key     Key     `yaml:"key" json:"key"`
	Command Command `yaml:"command,omitempty" json:"command,omitempty"`
	Queue   string  `yaml:"queue,omitempty" json:"queue,omitempty"`
}
