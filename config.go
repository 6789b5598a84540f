package execq

import (
	"fmt"
	"time"
)

// Config is a serialisable representation of the core configuration. It can
// be populated from YAML or JSON via the meta service; the zero value is
// usable, all nested fields inherit their package defaults.
type Config struct {
	Executor  ExecutorConfig  `json:"executor" yaml:"executor"`
	Heartbeat HeartbeatConfig `json:"heartbeat" yaml:"heartbeat"`
	Backend   BackendConfig   `json:"backend" yaml:"backend"`
}

// ExecutorConfig configures the admission and dispatch core.
type ExecutorConfig struct {
	// Parallelism is the concurrency ceiling; 0 means unlimited.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// HeartbeatConfig configures the runtime's dispatch loop.
type HeartbeatConfig struct {
	IntervalMs int `json:"intervalMs" yaml:"intervalMs"`
}

// Interval returns the heartbeat period.
func (c HeartbeatConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// BackendConfig configures the default local backend.
type BackendConfig struct {
	Workers          int `json:"workers" yaml:"workers"`
	CommandTimeoutMs int `json:"commandTimeoutMs" yaml:"commandTimeoutMs"`
}

// CommandTimeout returns the per-command execution bound.
func (c BackendConfig) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

// DefaultConfig returns a Config populated with the same defaults the
// constructors use. Callers may modify the returned struct before passing it
// to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Executor:  ExecutorConfig{Parallelism: 32},
		Heartbeat: HeartbeatConfig{IntervalMs: 5000},
		Backend:   BackendConfig{Workers: 5, CommandTimeoutMs: 60000},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Executor.Parallelism < 0 {
		return fmt.Errorf("executor.parallelism must be >= 0")
	}
	if c.Heartbeat.IntervalMs <= 0 {
		return fmt.Errorf("heartbeat.intervalMs must be > 0")
	}
	if c.Backend.Workers <= 0 {
		return fmt.Errorf("backend.workers must be > 0")
	}
	if c.Backend.CommandTimeoutMs <= 0 {
		return fmt.Errorf("backend.commandTimeoutMs must be > 0")
	}
	return nil
}
