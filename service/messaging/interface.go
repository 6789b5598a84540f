package messaging

import (
	"context"
)

// Queue is the transport backends use to hand submissions to their workers.
// It is generic so that backends can also move their own bookkeeping payloads
// through the same abstraction.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue. It must not
	// block the publisher beyond buffer admission.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available or the context is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure in processing this message.
	Nack(err error) error
}
