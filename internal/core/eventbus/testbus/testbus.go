// Package testbus runs a real EventBus for tests and records what it accepts.
package testbus

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
)

// Recorded is one event accepted by the bus.
type Recorded struct {
	Event   eventbus.Event
	Payload any
}

// Bus is a started EventBus that remembers every published event.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	log     []Recorded
	changed chan struct{}
}

// New starts a bus that stops when t finishes.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		changed:  make(chan struct{}),
	}
	tb.OnPublish(func(event eventbus.Event, payload any) {
		tb.mu.Lock()
		tb.log = append(tb.log, Recorded{Event: event, Payload: payload})
		close(tb.changed)
		tb.changed = make(chan struct{})
		tb.mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go tb.Start(ctx)

	return tb
}

// Events returns the recorded events in publish order.
func (tb *Bus) Events() []Recorded {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.log)
}

// Reset forgets everything recorded so far.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	tb.log = nil
	tb.mu.Unlock()
}

// seen reports whether event was recorded, waiting up to timeout for it.
func (tb *Bus) seen(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		tb.mu.Lock()
		found := slices.ContainsFunc(tb.log, func(r Recorded) bool { return r.Event == event })
		changed := tb.changed
		tb.mu.Unlock()

		if found {
			return true
		}
		select {
		case <-changed:
		case <-deadline.C:
			return false
		}
	}
}

// AssertPublished fails t unless event is recorded within half a second.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	assert.Truef(t, tb.seen(event, 500*time.Millisecond), "expected %q to be published", event)
}

// Payloads returns the payloads recorded for event that have type T.
func Payloads[T any](tb *Bus, event eventbus.Event) []T {
	var out []T
	for _, r := range tb.Events() {
		if p, ok := r.Payload.(T); ok && r.Event == event {
			out = append(out, p)
		}
	}
	return out
}
