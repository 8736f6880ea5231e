package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches published events to subscribers on a single goroutine.
// Publishing never blocks: when the buffer is full the event is dropped and
// the OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size. Call Start to begin dispatch.
func New(size int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, size),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	handlers := make([]func(any), len(bus.subs[env.event]))
	copy(handlers, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.firePanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func subscribe[T any](bus *EventBus, event Event, fn func(T)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
	bus.mu.Unlock()
	bus.hooks.subscribed.each(func(fn func(Event)) { fn(event) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribe(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) PublishSessionChanged(p SessionChangedPayload) {
	bus.send(EventSessionChanged, p)
}

func (bus *EventBus) SubscribeSessionChanged(fn func(SessionChangedPayload)) {
	subscribe(bus, EventSessionChanged, fn)
}

func (bus *EventBus) PublishSessionExpired(p SessionExpiredPayload) {
	bus.send(EventSessionExpired, p)
}

func (bus *EventBus) SubscribeSessionExpired(fn func(SessionExpiredPayload)) {
	subscribe(bus, EventSessionExpired, fn)
}

func (bus *EventBus) PublishSettingsChanged(p SettingsChangedPayload) {
	bus.send(EventSettingsChanged, p)
}

func (bus *EventBus) SubscribeSettingsChanged(fn func(SettingsChangedPayload)) {
	subscribe(bus, EventSettingsChanged, fn)
}

func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) {
	bus.send(EventTaskCreated, p)
}

func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	subscribe(bus, EventTaskCreated, fn)
}

func (bus *EventBus) PublishTaskUpdated(p TaskUpdatedPayload) {
	bus.send(EventTaskUpdated, p)
}

func (bus *EventBus) SubscribeTaskUpdated(fn func(TaskUpdatedPayload)) {
	subscribe(bus, EventTaskUpdated, fn)
}

func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) {
	bus.send(EventTaskDeleted, p)
}

func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	subscribe(bus, EventTaskDeleted, fn)
}

func (bus *EventBus) PublishUserCreated(p UserCreatedPayload) {
	bus.send(EventUserCreated, p)
}

func (bus *EventBus) SubscribeUserCreated(fn func(UserCreatedPayload)) {
	subscribe(bus, EventUserCreated, fn)
}

func (bus *EventBus) PublishUserUpdated(p UserUpdatedPayload) {
	bus.send(EventUserUpdated, p)
}

func (bus *EventBus) SubscribeUserUpdated(fn func(UserUpdatedPayload)) {
	subscribe(bus, EventUserUpdated, fn)
}

func (bus *EventBus) PublishUserDeleted(p UserDeletedPayload) {
	bus.send(EventUserDeleted, p)
}

func (bus *EventBus) SubscribeUserDeleted(fn func(UserDeletedPayload)) {
	subscribe(bus, EventUserDeleted, fn)
}
