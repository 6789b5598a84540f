// Package tracing is a thin wrapper around OpenTelemetry so that the rest of
// the code-base can instrument heartbeat and backend entry points without
// importing the upstream packages directly. Applications that do not require
// tracing simply never call Init and all spans become no-ops.
package tracing
