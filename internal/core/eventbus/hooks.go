package eventbus

import "sync"

// hookList is a copy-on-read list of observer callbacks.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (l *hookList[F]) add(fn F) {
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *hookList[F]) each(call func(F)) {
	l.mu.RLock()
	fns := append([]F(nil), l.fns...)
	l.mu.RUnlock()
	for _, fn := range fns {
		call(fn)
	}
}

// hooks observe the bus without taking part in dispatch.
type hooks struct {
	published  hookList[func(Event, any)]
	dropped    hookList[func(Event, any)]
	subscribed hookList[func(Event)]
	panicked   hookList[func(Event, any, any)]
}

// OnPublish observes every event accepted into the buffer.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.published.add(fn) }

// OnDrop observes events discarded because the buffer was full.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.dropped.add(fn) }

// OnSubscribe observes new subscriptions.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.hooks.subscribed.add(fn) }

// OnPanic observes subscribers that panic. The third argument is the
// recovered value.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panicked.add(fn) }

// send enqueues an event without blocking. A nil bus discards the event so
// components can be built without one.
func (bus *EventBus) send(event Event, payload any) {
	if bus == nil {
		return
	}

	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.hooks.published.each(func(fn func(Event, any)) { fn(event, payload) })
	default:
		bus.hooks.dropped.each(func(fn func(Event, any)) { fn(event, payload) })
	}
}

func (bus *EventBus) firePanic(event Event, payload, recovered any) {
	bus.hooks.panicked.each(func(fn func(Event, any, any)) {
		// A failing observer must not take the dispatch loop down with it.
		defer func() { _ = recover() }()
		fn(event, payload, recovered)
	})
}
