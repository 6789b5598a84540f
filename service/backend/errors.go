package backend

import "errors"

// ErrNotImplemented marks a required backend capability that the concrete
// backend did not provide. It signals a programmer error, not a runtime
// condition: callers must abort the calling path rather than swallow it.
var ErrNotImplemented = errors.New("backend: not implemented")
