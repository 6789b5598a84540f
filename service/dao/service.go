package dao

import (
	"context"
)

// Service is the generic storage contract for externally-owned records. The
// executor core only ever reads through this interface; writing records is
// the business of whichever controller owns them.
type Service[K comparable, T any] interface {
	// Save persists (a copy of) the supplied record.
	Save(ctx context.Context, t *T) error

	// Load returns the record for the given key or ErrNotFound.
	Load(ctx context.Context, id K) (*T, error)

	// Delete removes the record for the given key.
	Delete(ctx context.Context, id K) error

	// List returns records matching the optional parameters.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
