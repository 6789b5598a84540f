// Package execq provides an admission-control and dispatch core for opaque
// command payloads. Work is submitted under a structural key, held in a
// priority queue, and handed to a pluggable execution backend one heartbeat
// at a time; completions flow back through a buffered event channel that the
// owning controller drains.
//
// The package wires the core, a backend and a heartbeat-driven runtime
// together; each collaborator can be replaced through options.
package execq
