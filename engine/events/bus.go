// Package events implements the synchronous event bus that connects the UI
// layer to the application layer, and the closed set of events it carries.
//
// Handlers run on the caller's goroutine in registration order. A handler
// may emit further events; the resulting cascade runs to completion before
// the outer Emit returns.
package events

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// Name identifies an event on the bus.
type Name string

// Any is a wildcard name. Its handlers see every event after the handlers
// registered for the event's own name.
const Any Name = "*"

// DefaultMaxDepth bounds nested Emit calls.
const DefaultMaxDepth = 32

// ErrCascadeDepth is returned when nested emission exceeds the depth limit.
var ErrCascadeDepth = errors.New("event cascade too deep")

// Event is implemented by every payload carried on the bus.
type Event interface {
	Name() Name
}

// Handler receives one event.
type Handler func(Event)

// HandlerError reports a handler that panicked during Emit.
type HandlerError struct {
	Event Name
	Value any
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %s panicked: %v", e.Event, e.Value)
}

type listener struct {
	id   uint64
	fn   Handler
	once bool
}

// Bus is an in-process publish/subscribe registry. It is owned by one game
// session and is not safe for concurrent use; callers serialize access.
type Bus struct {
	listeners map[Name][]listener
	nextID    uint64
	depth     int
	maxDepth  int
	log       *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards handler failures.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		listeners: map[Name][]listener{},
		maxDepth:  DefaultMaxDepth,
		log:       log,
	}
}

// SetMaxDepth changes the nesting limit for cascading emission.
func (b *Bus) SetMaxDepth(n int) {
	if n < 1 {
		n = 1
	}
	b.maxDepth = n
}

// Subscription is the handle for one registered handler.
type Subscription struct {
	bus  *Bus
	name Name
	id   uint64
}

// Unsubscribe removes exactly this handler. Calling it twice is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.remove(s.name, s.id)
}

// On registers h for name.
func (b *Bus) On(name Name, h Handler) *Subscription {
	return b.add(name, h, false)
}

// Once registers h for name. It is removed before its first invocation, so
// it runs at most once even when the event is emitted re-entrantly.
func (b *Bus) Once(name Name, h Handler) *Subscription {
	return b.add(name, h, true)
}

// Off removes the given subscriptions for name, or every handler for name
// when none are given.
func (b *Bus) Off(name Name, subs ...*Subscription) {
	if len(subs) == 0 {
		delete(b.listeners, name)
		return
	}
	for _, s := range subs {
		if s != nil && s.bus == b && s.name == name {
			b.remove(name, s.id)
		}
	}
}

// Clear removes every handler for every event.
func (b *Bus) Clear() {
	b.listeners = map[Name][]listener{}
}

// ListenerCount returns the number of handlers for the given names, or for
// all names when none are given.
func (b *Bus) ListenerCount(names ...Name) int {
	n := 0
	if len(names) == 0 {
		for _, ls := range b.listeners {
			n += len(ls)
		}
		return n
	}
	for _, name := range names {
		n += len(b.listeners[name])
	}
	return n
}

// Emit synchronously invokes every handler currently registered for the
// event's name, then the Any handlers. Emitting with no listeners is a no-op.
//
// A panicking handler is recovered and logged and the remaining handlers
// still run; the first failure is returned as a *HandlerError.
func (b *Bus) Emit(ev Event) error {
	if ev == nil {
		return nil
	}
	if b.depth >= b.maxDepth {
		b.log.Error("dropping event", "event", string(ev.Name()), "depth", b.depth)
		return errors.Wrapf(ErrCascadeDepth, "emitting %s", ev.Name())
	}
	b.depth++
	defer func() { b.depth-- }()

	var first error
	for _, name := range [...]Name{ev.Name(), Any} {
		ls := b.listeners[name]
		if len(ls) == 0 {
			continue
		}
		// Snapshot: handlers added during this emission wait for the next one.
		snapshot := append([]listener(nil), ls...)
		for _, l := range snapshot {
			if !b.registered(name, l.id) {
				continue
			}
			if l.once {
				b.remove(name, l.id)
			}
			if err := b.invoke(l, ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

func (b *Bus) invoke(l listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Event: ev.Name(), Value: r}
			b.log.Error("event handler panicked", "event", string(ev.Name()), "panic", fmt.Sprint(r))
		}
	}()
	l.fn(ev)
	return nil
}

func (b *Bus) add(name Name, h Handler, once bool) *Subscription {
	b.nextID++
	b.listeners[name] = append(b.listeners[name], listener{id: b.nextID, fn: h, once: once})
	return &Subscription{bus: b, name: name, id: b.nextID}
}

func (b *Bus) registered(name Name, id uint64) bool {
	for _, l := range b.listeners[name] {
		if l.id == id {
			return true
		}
	}
	return false
}

func (b *Bus) remove(name Name, id uint64) {
	ls := b.listeners[name]
	for i, l := range ls {
		if l.id != id {
			continue
		}
		// Copy so an in-flight snapshot keeps its own backing array.
		next := make([]listener, 0, len(ls)-1)
		next = append(next, ls[:i]...)
		next = append(next, ls[i+1:]...)
		if len(next) == 0 {
			delete(b.listeners, name)
		} else {
			b.listeners[name] = next
		}
		return
	}
}

// On registers a handler for the event type T. The event name is taken
// from T's zero value.
func On[T Event](b *Bus, fn func(T)) *Subscription {
	var zero T
	return b.On(zero.Name(), typed(fn))
}

// Once is the typed form of Bus.Once.
func Once[T Event](b *Bus, fn func(T)) *Subscription {
	var zero T
	return b.Once(zero.Name(), typed(fn))
}

func typed[T Event](fn func(T)) Handler {
	return func(ev Event) {
		if t, ok := ev.(T); ok {
			fn(t)
		}
	}
}
