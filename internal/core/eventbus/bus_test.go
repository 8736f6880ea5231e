package eventbus_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskdeck/internal/core/eventbus"
	"github.com/hay-kot/taskdeck/internal/core/task"
)

func startBus(t *testing.T, size int) *eventbus.EventBus {
	t.Helper()
	bus := eventbus.New(size)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
	return bus
}

func TestEventBus_DeliversTypedPayload(t *testing.T) {
	bus := startBus(t, 8)

	got := make(chan task.Task, 1)
	bus.SubscribeTaskUpdated(func(p eventbus.TaskUpdatedPayload) {
		got <- p.Task
	})

	bus.PublishTaskUpdated(eventbus.TaskUpdatedPayload{Task: task.Task{ID: "9", Title: "x"}})

	select {
	case tk := <-got:
		assert.Equal(t, "x", tk.Title)
	case <-time.After(time.Second):
		t.Fatal("subscriber was not called")
	}
}

func TestEventBus_DropWhenFull(t *testing.T) {
	// Not started, so the buffer of one fills immediately.
	bus := eventbus.New(1)

	var dropped atomic.Int32
	bus.OnDrop(func(eventbus.Event, any) { dropped.Add(1) })

	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "1"})
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "2"})

	assert.Equal(t, int32(1), dropped.Load())
}

func TestEventBus_PanicRecovered(t *testing.T) {
	bus := startBus(t, 8)

	panicked := make(chan any, 1)
	bus.OnPanic(func(_ eventbus.Event, _ any, r any) { panicked <- r })

	delivered := make(chan struct{}, 1)
	bus.SubscribeUserDeleted(func(eventbus.UserDeletedPayload) { panic("boom") })
	bus.SubscribeUserDeleted(func(eventbus.UserDeletedPayload) { delivered <- struct{}{} })

	bus.PublishUserDeleted(eventbus.UserDeletedPayload{UserID: "3"})

	select {
	case r := <-panicked:
		assert.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("panic hook not called")
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("later subscriber starved by panicking one")
	}
}

func TestEventBus_NilIsNoop(t *testing.T) {
	var bus *eventbus.EventBus
	require.NotPanics(t, func() {
		bus.PublishSessionExpired(eventbus.SessionExpiredPayload{})
	})
}
