package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/execq/execq/model/task"
)

// partial provides only the optional operations, as a backend author might
// while scaffolding a new integration.
type partial struct {
	Base
}

func TestBaseOptionalOperations(t *testing.T) {
	ctx := context.Background()
	var b Backend = partial{}

	assert.NoError(t, b.Start(ctx))
	assert.NoError(t, b.Sync(ctx))
}

func TestBaseRequiredOperations(t *testing.T) {
	ctx := context.Background()
	var b Backend = partial{}

	err := b.ExecuteAsync(ctx, task.Submission{})
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, b.End(ctx), ErrNotImplemented)
	assert.ErrorIs(t, b.Terminate(ctx), ErrNotImplemented)
}
