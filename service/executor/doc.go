// Package executor owns the admission queue, the running set and the event
// buffer, and runs the priority-ordered slot-filling dispatch pass on every
// heartbeat. It is the only package allowed to move work between those three
// structures; backends call back in exclusively through ChangeState and its
// Success/Fail wrappers.
package executor
