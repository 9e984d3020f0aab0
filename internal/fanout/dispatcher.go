// Package fanout turns domain events into notification records and push
// dispatches. Handlers are independent and best-effort: each one catches
// and logs its own failures, and a failing handler never affects its
// siblings. Delivery is at-least-once; a duplicate invocation produces a
// duplicate notification record. There is no idempotency layer.
package fanout

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/event"
)

// HandlerFunc processes one domain event. Returned errors are logged by
// the dispatcher and never propagated.
type HandlerFunc func(ctx context.Context, ev event.Event) error

type registration struct {
	name string
	fn   HandlerFunc
}

// Dispatcher routes events to the handlers registered for their type.
// Dispatch enqueues; Run drains the queue and delivers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]registration
	queue    chan event.Event
	log      *logrus.Logger
}

// NewDispatcher constructs a dispatcher with a buffered event queue.
func NewDispatcher(log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[event.Type][]registration),
		queue:    make(chan event.Event, 256),
		log:      log,
	}
}

// Register adds a named handler for an event type. Multiple handlers per
// type are allowed and each is invoked for every event of that type.
func (d *Dispatcher) Register(t event.Type, name string, fn HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], registration{name: name, fn: fn})
}

// Dispatch enqueues an event for delivery. Blocks if the queue is full
// rather than dropping; producers are HTTP handlers that can afford it.
func (d *Dispatcher) Dispatch(ev event.Event) {
	d.queue <- ev
}

// Run delivers queued events until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			d.Deliver(ctx, ev)
		}
	}
}

// Deliver synchronously invokes every handler registered for the event's
// type. Each invocation is isolated: panics are recovered and errors are
// logged without stopping the remaining handlers.
func (d *Dispatcher) Deliver(ctx context.Context, ev event.Event) {
	d.mu.RLock()
	regs := d.handlers[ev.Type]
	d.mu.RUnlock()

	for _, reg := range regs {
		d.invoke(ctx, reg, ev)
	}
}

func (d *Dispatcher) invoke(ctx context.Context, reg registration, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(logrus.Fields{
				"handler":  reg.name,
				"event_id": ev.ID,
				"type":     ev.Type,
				"panic":    r,
			}).Error("fanout: handler panicked")
		}
	}()

	if err := reg.fn(ctx, ev); err != nil {
		d.log.WithFields(logrus.Fields{
			"handler":  reg.name,
			"event_id": ev.ID,
			"type":     ev.Type,
			"path":     ev.Path,
		}).WithError(err).Warn("fanout: handler failed")
	}
}
