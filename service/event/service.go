package event

import (
	"context"
	"errors"
	"log"

	"github.com/execq/execq/service/messaging"
	"github.com/execq/execq/service/messaging/memory"
)

// ErrBufferFull is returned when a bounded queue cannot accept an event
// without blocking. Callers on the dispatch path log it and move on.
var ErrBufferFull = errors.New("event: buffer full")

// Service fans dispatch lifecycle events out to listeners over a messaging
// queue. Publishing is best effort; the dispatch path never fails because an
// observer is slow or absent.
type Service struct {
	queue messaging.Queue[Event]
}

// Option customises the event service.
type Option func(*Service)

// WithQueue sets the underlying queue implementation.
func WithQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// New creates an event service, defaulting to an in-memory queue.
func New(options ...Option) *Service {
	s := &Service{}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[Event](memory.DefaultConfig())
	}
	return s
}

// Publish enqueues an event without ever blocking the publisher: queues that
// support non-blocking admission drop the event with ErrBufferFull when
// saturated. A slow or absent observer must never stall dispatch.
func (s *Service) Publish(ctx context.Context, event Event) error {
	if queue, ok := s.queue.(interface {
		TryPublish(ctx context.Context, t *Event) (bool, error)
	}); ok {
		published, err := queue.TryPublish(ctx, &event)
		if err != nil {
			return err
		}
		if !published {
			return ErrBufferFull
		}
		return nil
	}
	return s.queue.Publish(ctx, &event)
}

// Consume blocks for the next event.
func (s *Service) Consume(ctx context.Context) (Event, error) {
	msg, err := s.queue.Consume(ctx)
	if err != nil {
		return Event{}, err
	}
	defer func() { _ = msg.Ack() }()
	return *msg.T(), nil
}

// Listener invokes a handler for every event until stopped.
type Listener struct {
	service  *Service
	handler  func(Event)
	cancelFn context.CancelFunc
}

// Listen starts a goroutine delivering events to the handler.
func (s *Service) Listen(handler func(Event)) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &Listener{service: s, handler: handler, cancelFn: cancel}
	go func() {
		for {
			event, err := s.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("event listener: %v", err)
				continue
			}
			handler(event)
		}
	}()
	return listener
}

// Stop terminates delivery.
func (l *Listener) Stop() {
	l.cancelFn()
}
